package render

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/scitags/rdma-res-go/types"
)

// CommLookup resolves the name of the process owning a resource.
type CommLookup interface {
	Comm(pid uint32) (string, error)
}

type Options struct {
	// JSON selects a single JSON array for the whole query instead of lines.
	JSON bool

	// Details adds the vendor specific driver attributes.
	Details bool

	// Comm is used to fill in process names. A nil Comm leaves them out.
	Comm CommLookup
}

// Renderer writes records as they come when producing text. When producing
// JSON records are accumulated and written out as an array on Flush.
type Renderer struct {
	w    io.Writer
	opts Options

	arena fastjson.Arena
	array *fastjson.Value
	n     int
}

func New(w io.Writer, opts Options) *Renderer {
	r := &Renderer{w: w, opts: opts}
	r.array = r.arena.NewArray()
	return r
}

// Render emits a single record.
func (r *Renderer) Render(rec *types.Record) error {
	if r.opts.JSON {
		r.array.SetArrayItem(r.n, r.object(rec))
		r.n++
		return nil
	}

	if _, err := io.WriteString(r.w, r.line(rec)); err != nil {
		return fmt.Errorf("couldn't write record: %w", err)
	}
	return nil
}

// Flush writes the JSON array out, even when it's empty. It's a no-op when
// producing text. The renderer can be reused afterwards.
func (r *Renderer) Flush() error {
	if !r.opts.JSON {
		return nil
	}

	b := r.array.MarshalTo(nil)
	b = append(b, '\n')

	r.arena.Reset()
	r.array = r.arena.NewArray()
	r.n = 0

	if _, err := r.w.Write(b); err != nil {
		return fmt.Errorf("couldn't write records: %w", err)
	}
	return nil
}

func (r *Renderer) comm(pid uint32) (string, bool) {
	if r.opts.Comm == nil {
		return "", false
	}

	name, err := r.opts.Comm.Comm(pid)
	if err != nil {
		slog.Debug("couldn't get the process name", "pid", pid, "err", err)
		return "", false
	}
	return name, true
}

func (r *Renderer) line(rec *types.Record) string {
	tokens := make([]string, 0, 2*(len(rec.Fields)+len(rec.Trailer)+len(rec.Driver)+3))

	if rec.Link {
		tokens = append(tokens, "link", rec.LinkName())
	} else {
		tokens = append(tokens, "dev", rec.DevName)
	}

	tokens = appendFields(tokens, rec.Fields)

	switch owner := rec.Owner.(type) {
	case types.Process:
		tokens = append(tokens, "pid", strconv.FormatUint(uint64(owner.PID), 10))
		if name, ok := r.comm(owner.PID); ok {
			tokens = append(tokens, "comm", name)
		}
	case types.Kernel:
		tokens = append(tokens, "comm", "["+owner.Name+"]")
	}

	tokens = appendFields(tokens, rec.Trailer)

	if r.opts.Details {
		for _, d := range rec.Driver {
			tokens = append(tokens, d.Key, driverValue(d))
		}
	}

	return strings.Join(tokens, " ") + "\n"
}

func appendFields(tokens []string, fields []types.Field) []string {
	for _, f := range fields {
		if !f.Present || f.Hidden {
			continue
		}
		tokens = append(tokens, f.Name, fieldValue(f))
	}
	return tokens
}

func fieldValue(f types.Field) string {
	switch f.Format {
	case types.Hex:
		return "0x" + strconv.FormatUint(f.Value.Num, 16)
	case types.String:
		return f.Value.Str
	case types.AddrPort:
		return f.Value.Str + ":" + strconv.FormatUint(f.Value.Num, 10)
	}
	return strconv.FormatUint(f.Value.Num, 10)
}

func driverValue(d types.DriverAttr) string {
	switch d.Kind {
	case types.DriverString:
		return d.Str
	case types.DriverS32, types.DriverS64:
		if d.Hex {
			return "0x" + strconv.FormatUint(uint64(d.SNum), 16)
		}
		return strconv.FormatInt(d.SNum, 10)
	}

	if d.Hex {
		return "0x" + strconv.FormatUint(d.Num, 16)
	}
	return strconv.FormatUint(d.Num, 10)
}

func (r *Renderer) object(rec *types.Record) *fastjson.Value {
	a := &r.arena
	o := a.NewObject()

	o.Set("ifindex", a.NewNumberString(strconv.FormatUint(uint64(rec.DevIndex), 10)))
	if rec.Link && rec.HasPort {
		o.Set("port", a.NewNumberString(strconv.FormatUint(uint64(rec.Port), 10)))
	}
	o.Set("ifname", a.NewString(rec.DevName))

	r.setFields(o, rec.Fields)

	switch owner := rec.Owner.(type) {
	case types.Process:
		o.Set("pid", a.NewNumberString(strconv.FormatUint(uint64(owner.PID), 10)))
		if name, ok := r.comm(owner.PID); ok {
			o.Set("comm", a.NewString(name))
		} else {
			o.Set("comm", a.NewNull())
		}
	case types.Kernel:
		o.Set("comm", a.NewString(owner.Name))
	}

	r.setFields(o, rec.Trailer)

	if r.opts.Details {
		for _, d := range rec.Driver {
			// Set would replace the canonical member.
			if o.Get(d.Key) != nil {
				slog.Debug("dropping colliding driver attribute", "kind", rec.Kind, "key", d.Key)
				continue
			}
			if d.Kind == types.DriverString || d.Hex {
				o.Set(d.Key, a.NewString(driverValue(d)))
				continue
			}
			o.Set(d.Key, a.NewNumberString(driverValue(d)))
		}
	}

	return o
}

func (r *Renderer) setFields(o *fastjson.Value, fields []types.Field) {
	a := &r.arena
	for _, f := range fields {
		if !f.Present || f.Hidden {
			continue
		}

		switch f.Format {
		case types.Decimal:
			o.Set(f.Name, a.NewNumberString(fieldValue(f)))
		default:
			o.Set(f.Name, a.NewString(fieldValue(f)))
		}
	}
}
