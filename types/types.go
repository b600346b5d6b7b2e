package types

import (
	"net/netip"
	"strconv"
	"strings"
)

// Kind identifies one of the RDMA resource categories tracked by the kernel.
type Kind int

const (
	PD Kind = iota
	MR
	CQ
	CMID
	QP
)

// ValueKind tells the filter engine how to compare a field.
type ValueKind int

const (
	// Numeric fields compare by exact equality on the widened value.
	Numeric ValueKind = iota

	// Text fields are strings read straight from the wire (names, addresses).
	Text

	// Derived fields are display strings computed from a numeric code.
	Derived
)

// Format controls how a field is rendered.
type Format int

const (
	Decimal Format = iota
	Hex
	String
	AddrPort
)

var (
	kindMap = map[string]Kind{
		"PD":    PD,
		"MR":    MR,
		"CQ":    CQ,
		"CM_ID": CMID,
		"QP":    QP,
	}

	dnikMap = map[Kind]string{
		PD:   "pd",
		MR:   "mr",
		CQ:   "cq",
		CMID: "cm_id",
		QP:   "qp",
	}

	valueKindMap = map[ValueKind]string{
		Numeric: "numeric",
		Text:    "text",
		Derived: "derived",
	}
)

func (k Kind) String() string {
	return dnikMap[k]
}

// ParseKind accepts both "cm_id" and "cm-id".
func ParseKind(kind string) (Kind, bool) {
	k, ok := kindMap[strings.ReplaceAll(strings.ToUpper(kind), "-", "_")]
	return k, ok
}

// Kinds returns every resource kind in a stable order.
func Kinds() []Kind {
	return []Kind{PD, MR, CQ, CMID, QP}
}

func (v ValueKind) String() string {
	return valueKindMap[v]
}

// Value carries an extracted attribute. Numeric fields use Num, text and
// derived fields use Str. Address fields use both: Str holds the address and
// Num the port.
type Value struct {
	Num uint64
	Str string
}

// Field is a single named value of a record. Fields that were not reported by
// the kernel keep their default value so that filters can still be evaluated
// against them, but they are never rendered.
type Field struct {
	Name    string
	Kind    ValueKind
	Format  Format
	Value   Value
	Present bool

	// Hidden fields exist for filtering only (i.e. the port half of an address).
	Hidden bool

	// Optional fields are only filtered on when present.
	Optional bool
}

// Owner is either a user process or a kernel consumer. Exactly one of the two
// variants describes a record.
type Owner interface {
	isOwner()
}

// Process owns a resource from user space. The name is resolved on rendering.
type Process struct {
	PID uint32
}

// Kernel owns a resource from within the kernel; Name comes from the wire.
type Kernel struct {
	Name string
}

func (Process) isOwner() {}
func (Kernel) isOwner()  {}

// DriverKind mirrors the value attribute types of a vendor driver tuple.
type DriverKind int

const (
	DriverString DriverKind = iota
	DriverS32
	DriverU32
	DriverS64
	DriverU64
)

// DriverAttr is one {key, value} tuple of the opaque vendor attribute table.
type DriverAttr struct {
	Key  string
	Kind DriverKind
	Hex  bool
	Str  string
	Num  uint64
	SNum int64
}

// Record is built for one resource entry and discarded once it has been
// rendered or filtered out.
type Record struct {
	Kind Kind

	DevIndex uint32
	DevName  string
	Port     uint32
	HasPort  bool

	// Link is true for kinds identified by device and port (cm_id, qp).
	Link bool

	// Fields precede the owner, Trailer follows it.
	Fields  []Field
	Owner   Owner
	Trailer []Field

	Driver []DriverAttr
}

// PID returns the owning process id, or 0 for kernel owned resources.
func (r *Record) PID() uint32 {
	if p, ok := r.Owner.(Process); ok {
		return p.PID
	}
	return 0
}

// LinkName formats the device and port as done for the link filter.
func (r *Record) LinkName() string {
	if !r.HasPort {
		return r.DevName + "/-"
	}
	return r.DevName + "/" + strconv.FormatUint(uint64(r.Port), 10)
}

// Lookup returns the value a filter named name should be compared against.
// The boolean is false when no filter on name applies: either the record has
// no such field or it's an optional one the kernel didn't report.
func (r *Record) Lookup(name string) (Value, bool) {
	switch name {
	case "dev":
		return Value{Str: r.DevName}, true
	case "link":
		return Value{Str: r.LinkName()}, true
	case "pid":
		return Value{Num: uint64(r.PID())}, true
	}

	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, f.Present || !f.Optional
		}
	}
	for _, f := range r.Trailer {
		if f.Name == name {
			return f.Value, f.Present || !f.Optional
		}
	}
	return Value{}, false
}

// Address builds the rendered and hidden fields of a socket address.
func Address(name string, ap netip.AddrPort, present bool) []Field {
	v := Value{Num: uint64(ap.Port())}
	if present {
		v.Str = ap.Addr().String()
	}
	port := strings.TrimSuffix(name, "-addr") + "-port"
	return []Field{
		{Name: name, Kind: Text, Format: AddrPort, Value: v, Present: present, Optional: true},
		{Name: port, Kind: Numeric, Format: Decimal, Value: Value{Num: v.Num}, Present: present, Hidden: true, Optional: true},
	}
}
