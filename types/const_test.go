package types

import (
	"net/netip"
	"testing"
)

func TestDerivedStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"qp smi", IB_QPT_SMI.String(), "SMI"},
		{"qp gsi", IB_QPT_GSI.String(), "GSI"},
		{"qp rc", IB_QPT_RC.String(), "RC"},
		{"qp uc", IB_QPT_UC.String(), "UC"},
		{"qp ud", IB_QPT_UD.String(), "UD"},
		{"qp raw packet", IB_QPT_RAW_PACKET.String(), "RAW_PACKET"},
		{"qp xrc ini", IB_QPT_XRC_INI.String(), "XRC_INI"},
		{"qp xrc tgt", IB_QPT_XRC_TGT.String(), "XRC_TGT"},
		{"qp driver", IB_QPT_DRIVER.String(), "DRIVER"},
		{"qp hole", QPType(7).String(), "UNKNOWN"},
		{"qp out of range", QPType(42).String(), "UNKNOWN"},

		{"cm idle", CMState(0).String(), "IDLE"},
		{"cm connect", CMState(5).String(), "CONNECT"},
		{"cm listen", CMState(8).String(), "LISTEN"},
		{"cm destroying", CMState(10).String(), "DESTROYING"},
		{"cm out of range", CMState(11).String(), "UNKNOWN"},

		{"ps ipoib", RDMA_PS_IPOIB.String(), "IPoIB"},
		{"ps ib", RDMA_PS_IB.String(), "IPoIB"},
		{"ps tcp", RDMA_PS_TCP.String(), "TCP"},
		{"ps udp", RDMA_PS_UDP.String(), "UDP"},
		{"ps unknown", PortSpace(0).String(), "---"},

		{"poll direct", PollContext(0).String(), "DIRECT"},
		{"poll softirq", PollContext(1).String(), "SOFTIRQ"},
		{"poll workqueue", PollContext(2).String(), "WORKQUEUE"},
		{"poll unbound", PollContext(3).String(), "UNBOUND_WORKQUEUE"},
		{"poll unknown", PollContext(99).String(), "UNKNOWN"},

		{"qp state rts", QPState(3).String(), "RTS"},
		{"qp state unknown", QPState(7).String(), "UNKNOWN"},
		{"mig armed", PathMigState(2).String(), "ARMED"},
		{"mig unknown", PathMigState(3).String(), "UNKNOWN"},
	}

	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("%s: got %q; want %q", test.name, test.got, test.want)
		}
	}
}

func TestEveryCodeHasAString(t *testing.T) {
	for i := 0; i < 256; i++ {
		for _, s := range []string{
			QPType(i).String(), QPState(i).String(), PathMigState(i).String(),
			CMState(i).String(), PollContext(i).String(), PortSpace(i).String(),
		} {
			if s == "" {
				t.Fatalf("code %d decoded to an empty string", i)
			}
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]struct {
		k  Kind
		ok bool
	}{
		"cq":    {CQ, true},
		"CQ":    {CQ, true},
		"cm_id": {CMID, true},
		"cm-id": {CMID, true},
		"qp":    {QP, true},
		"srq":   {0, false},
	}

	for in, want := range tests {
		k, ok := ParseKind(in)
		if ok != want.ok || (ok && k != want.k) {
			t.Errorf("%q: got (%v, %v); want (%v, %v)", in, k, ok, want.k, want.ok)
		}
	}
}

func TestRecordLookup(t *testing.T) {
	r := Record{
		Kind:    CMID,
		DevName: "mlx5_0",
		Port:    1,
		HasPort: true,
		Link:    true,
		Fields: []Field{
			{Name: "lqpn", Kind: Numeric, Value: Value{Num: 17}, Present: true},
			{Name: "state", Kind: Derived, Value: Value{Str: "LISTEN"}, Present: true},
		},
		Owner:   Kernel{Name: "rdma-ndd"},
		Trailer: Address("src-addr", netip.MustParseAddrPort("10.0.0.1:5000"), true),
	}

	tests := map[string]Value{
		"dev":      {Str: "mlx5_0"},
		"link":     {Str: "mlx5_0/1"},
		"pid":      {Num: 0},
		"lqpn":     {Num: 17},
		"state":    {Str: "LISTEN"},
		"src-addr": {Str: "10.0.0.1", Num: 5000},
		"src-port": {Num: 5000},
	}

	for name, want := range tests {
		got, ok := r.Lookup(name)
		if !ok {
			t.Errorf("%s: not found", name)
			continue
		}
		if got != want {
			t.Errorf("%s: got %+v; want %+v", name, got, want)
		}
	}

	if _, ok := r.Lookup("cqn"); ok {
		t.Errorf("cqn: unexpectedly found")
	}

	// Absent optional fields don't take part in filtering, absent plain
	// fields compare as their defaults.
	r.Fields = append(r.Fields,
		Field{Name: "qp-type", Kind: Derived, Optional: true},
		Field{Name: "cm-idn", Kind: Numeric},
	)
	r.Trailer = append(r.Trailer, Address("dst-addr", netip.AddrPort{}, false)...)
	for _, name := range []string{"qp-type", "dst-addr", "dst-port"} {
		if _, ok := r.Lookup(name); ok {
			t.Errorf("%s: absent optional field applies", name)
		}
	}
	if v, ok := r.Lookup("cm-idn"); !ok || v != (Value{}) {
		t.Errorf("cm-idn: got (%+v, %v); want the default", v, ok)
	}

	r.HasPort = false
	if got := r.LinkName(); got != "mlx5_0/-" {
		t.Errorf("got %q; want %q", got, "mlx5_0/-")
	}
}
