package filter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scitags/rdma-res-go/types"
)

var filterable = map[string]types.ValueKind{
	"dev":   types.Text,
	"lqpn":  types.Numeric,
	"pid":   types.Numeric,
	"state": types.Derived,
	"rkey":  types.Numeric,
	"rqpn":  types.Numeric,
}

func TestParsePairs(t *testing.T) {
	got, err := ParsePairs([]string{"lqpn=1,2", "state=RTS", "src-addr=fe80::1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Pair{{"lqpn", "1,2"}, {"state", "RTS"}, {"src-addr", "fe80::1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"lqpn", "=1", "lqpn="} {
		if _, err := ParsePairs([]string{bad}); !errors.Is(err, ErrInvalid) {
			t.Errorf("%q: got %v; want %v", bad, err, ErrInvalid)
		}
	}
}

func TestBuildInvalid(t *testing.T) {
	tests := map[string]Pair{
		"unknown name":  {"cqn", "1"},
		"not a number":  {"lqpn", "abc"},
		"negative":      {"pid", "-1"},
		"empty range":   {"lqpn", "7-3"},
		"bad range end": {"lqpn", "3-x"},
		"overflow":      {"lqpn", "18446744073709551616"},
		"bad hex":       {"rkey", "0xzz"},
		"empty item":    {"lqpn", "1,,2"},
	}

	for name, p := range tests {
		if _, err := Build(filterable, []Pair{p}); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: got %v; want %v", name, err, ErrInvalid)
		}
	}
}

func TestMatches(t *testing.T) {
	s, err := Build(filterable, []Pair{
		{"lqpn", "1,4-7"},
		{"state", "RTS,INIT"},
		{"rkey", "0x1F"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("got %d filters; want 3", s.Len())
	}

	tests := []struct {
		name  string
		value types.Value
		want  bool
	}{
		{"lqpn", types.Value{Num: 1}, true},
		{"lqpn", types.Value{Num: 4}, true},
		{"lqpn", types.Value{Num: 7}, true},
		{"lqpn", types.Value{Num: 3}, false},
		{"lqpn", types.Value{Num: 8}, false},
		{"state", types.Value{Str: "RTS"}, true},
		{"state", types.Value{Str: "rts"}, false},
		{"state", types.Value{Str: "ERR"}, false},
		{"rkey", types.Value{Num: 31}, true},
		{"pid", types.Value{Num: 1234}, true},
	}

	for _, test := range tests {
		if got := s.Matches(test.name, test.value); got != test.want {
			t.Errorf("%s=%+v: got %v; want %v", test.name, test.value, got, test.want)
		}
	}
}

func TestAccept(t *testing.T) {
	r := &types.Record{
		Kind:    types.QP,
		DevName: "mlx5_0",
		Fields: []types.Field{
			{Name: "lqpn", Kind: types.Numeric, Value: types.Value{Num: 5}, Present: true},
			{Name: "state", Kind: types.Derived, Value: types.Value{Str: "RTS"}, Present: true},
			{Name: "rqpn", Kind: types.Numeric, Optional: true},
		},
		Owner: types.Kernel{Name: "ib_core"},
	}

	tests := []struct {
		pairs []Pair
		want  bool
	}{
		{nil, true},
		{[]Pair{{"lqpn", "5"}}, true},
		{[]Pair{{"lqpn", "5"}, {"state", "RTS"}}, true},
		{[]Pair{{"lqpn", "5"}, {"state", "ERR"}}, false},
		{[]Pair{{"dev", "mlx5_0"}}, true},
		{[]Pair{{"dev", "mlx5_1"}}, false},
		// Kernel owned resources have a pid of 0.
		{[]Pair{{"pid", "0"}}, true},
		{[]Pair{{"pid", "1"}}, false},
		// Absent fields compare as their defaults.
		{[]Pair{{"rkey", "0"}}, true},
		{[]Pair{{"rkey", "1"}}, false},
		// Unless they're optional.
		{[]Pair{{"rqpn", "1"}}, true},
		{[]Pair{{"rqpn", "1"}, {"state", "ERR"}}, false},
	}

	for i, test := range tests {
		s, err := Build(filterable, test.pairs)
		if err != nil {
			t.Fatalf("%d: unexpected error: %v", i, err)
		}
		if got := s.Accept(r); got != test.want {
			t.Errorf("%d %v: got %v; want %v", i, test.pairs, got, test.want)
		}
	}
}
