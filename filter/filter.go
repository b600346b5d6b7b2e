package filter

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/scitags/rdma-res-go/types"
)

// ErrInvalid flags a filter we can't build: the name is not filterable for
// the resource kind or the value can't be parsed. It's a configuration error
// and it's raised before anything is decoded.
var ErrInvalid = errors.New("invalid filter")

// Pair is a user supplied name=value predicate.
type Pair struct {
	Name  string
	Value string
}

func (p Pair) String() string {
	return p.Name + "=" + p.Value
}

type numRange struct {
	lo, hi uint64
}

type filter struct {
	name string
	kind types.ValueKind
	nums []numRange
	strs []string
}

// Set is an ordered list of filters. Every filter must match for a record to
// be accepted. The zero value accepts everything.
type Set struct {
	filters []filter
}

// ParsePairs splits arguments of the form name=value.
func ParsePairs(args []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("%w: %q is not of the form name=value", ErrInvalid, arg)
		}
		pairs = append(pairs, Pair{Name: name, Value: value})
	}
	return pairs, nil
}

// Build validates pairs against the filterable fields of a resource kind.
// Numeric values are comma separated lists of numbers or inclusive ranges
// (i.e. 1,4-7,0x10) and text values are comma separated alternatives
// compared exactly.
func Build(filterable map[string]types.ValueKind, pairs []Pair) (Set, error) {
	s := Set{filters: make([]filter, 0, len(pairs))}
	for _, p := range pairs {
		kind, ok := filterable[p.Name]
		if !ok {
			return Set{}, fmt.Errorf("%w: unknown filter %q", ErrInvalid, p.Name)
		}

		f := filter{name: p.Name, kind: kind}
		for _, v := range strings.Split(p.Value, ",") {
			if kind != types.Numeric {
				f.strs = append(f.strs, v)
				continue
			}

			r, err := parseRange(v)
			if err != nil {
				return Set{}, fmt.Errorf("%w: %s: %v", ErrInvalid, p, err)
			}
			f.nums = append(f.nums, r)
		}

		slog.Debug("built filter", "name", f.name, "kind", f.kind, "value", p.Value)
		s.filters = append(s.filters, f)
	}
	return s, nil
}

func parseRange(s string) (numRange, error) {
	lo, hi, isRange := strings.Cut(s, "-")

	l, err := parseNum(lo)
	if err != nil {
		return numRange{}, err
	}
	if !isRange {
		return numRange{lo: l, hi: l}, nil
	}

	h, err := parseNum(hi)
	if err != nil {
		return numRange{}, err
	}
	if h < l {
		return numRange{}, fmt.Errorf("empty range %q", s)
	}
	return numRange{lo: l, hi: h}, nil
}

func parseNum(s string) (uint64, error) {
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		return strconv.ParseUint(hex, 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// Len returns the number of filters in the set.
func (s Set) Len() int {
	return len(s.filters)
}

// Matches reports whether every filter on name accepts v. Names without a
// filter always match.
func (s Set) Matches(name string, v types.Value) bool {
	for _, f := range s.filters {
		if f.name == name && !f.matches(v) {
			return false
		}
	}
	return true
}

// Accept evaluates the set against a record, bailing out on the first
// mismatch. Absent optional fields pass every filter, other absent fields are
// compared as their defaults.
func (s Set) Accept(r *types.Record) bool {
	for _, f := range s.filters {
		v, ok := r.Lookup(f.name)
		if !ok {
			continue
		}
		if !f.matches(v) {
			slog.Debug("record filtered out", "kind", r.Kind, "filter", f.name)
			return false
		}
	}
	return true
}

func (f filter) matches(v types.Value) bool {
	if f.kind == types.Numeric {
		for _, r := range f.nums {
			if v.Num >= r.lo && v.Num <= r.hi {
				return true
			}
		}
		return false
	}

	for _, s := range f.strs {
		if s == v.Str {
			return true
		}
	}
	return false
}
