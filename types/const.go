package types

// All of these constants' names make the linter complain, but we inherited
// them from the kernel's uapi headers (rdma/ib_user_verbs.h, rdma/rdma_cm.h),
// so we will keep them as they are...
const (
	IB_QPT_SMI           QPType = 0
	IB_QPT_GSI           QPType = 1
	IB_QPT_RC            QPType = 2
	IB_QPT_UC            QPType = 3
	IB_QPT_UD            QPType = 4
	IB_QPT_RAW_IPV6      QPType = 5
	IB_QPT_RAW_ETHERTYPE QPType = 6
	IB_QPT_RAW_PACKET    QPType = 8
	IB_QPT_XRC_INI       QPType = 9
	IB_QPT_XRC_TGT       QPType = 10
	IB_QPT_DRIVER        QPType = 0xFF

	RDMA_PS_IPOIB PortSpace = 0x0002
	RDMA_PS_IB    PortSpace = 0x013F
	RDMA_PS_TCP   PortSpace = 0x0106
	RDMA_PS_UDP   PortSpace = 0x0111

	// Fallbacks for codes outside of the tables below.
	Unknown   = "UNKNOWN"
	NoneShown = "---"
)

var (
	qpTypeName = map[QPType]string{
		IB_QPT_SMI:           "SMI",
		IB_QPT_GSI:           "GSI",
		IB_QPT_RC:            "RC",
		IB_QPT_UC:            "UC",
		IB_QPT_UD:            "UD",
		IB_QPT_RAW_IPV6:      "RAW_IPV6",
		IB_QPT_RAW_ETHERTYPE: "RAW_ETHERTYPE",
		IB_QPT_RAW_PACKET:    "RAW_PACKET",
		IB_QPT_XRC_INI:       "XRC_INI",
		IB_QPT_XRC_TGT:       "XRC_TGT",
		IB_QPT_DRIVER:        "DRIVER",
	}

	qpStateName = []string{"RESET", "INIT", "RTR", "RTS", "SQD", "SQE", "ERR"}

	pathMigStateName = []string{"MIGRATED", "REARM", "ARMED"}

	cmStateName = []string{
		"IDLE", "ADDR_QUERY", "ADDR_RESOLVED",
		"ROUTE_QUERY", "ROUTE_RESOLVED", "CONNECT",
		"DISCONNECT", "ADDR_BOUND", "LISTEN",
		"DEVICE_REMOVAL", "DESTROYING",
	}

	portSpaceName = map[PortSpace]string{
		RDMA_PS_IPOIB: "IPoIB",
		RDMA_PS_IB:    "IPoIB",
		RDMA_PS_TCP:   "TCP",
		RDMA_PS_UDP:   "UDP",
	}

	pollContextName = []string{"DIRECT", "SOFTIRQ", "WORKQUEUE", "UNBOUND_WORKQUEUE"}
)

// QPType is the transport service type of a queue pair.
type QPType uint8

func (x QPType) String() string {
	s, ok := qpTypeName[x]
	if !ok {
		return Unknown
	}
	return s
}

// QPState is the state of a queue pair as in enum ib_qp_state.
type QPState uint8

func (x QPState) String() string {
	return fromTable(qpStateName, int(x), Unknown)
}

// PathMigState is the automatic path migration state of a queue pair.
type PathMigState uint8

func (x PathMigState) String() string {
	return fromTable(pathMigStateName, int(x), Unknown)
}

// CMState is the state of a connection manager ID as in enum rdma_cm_state.
type CMState uint8

func (x CMState) String() string {
	return fromTable(cmStateName, int(x), Unknown)
}

// PortSpace is the RDMA CM port space of a connection manager ID.
type PortSpace uint32

func (x PortSpace) String() string {
	s, ok := portSpaceName[x]
	if !ok {
		return NoneShown
	}
	return s
}

// PollContext describes how a completion queue is polled.
type PollContext uint8

func (x PollContext) String() string {
	return fromTable(pollContextName, int(x), Unknown)
}

func fromTable(table []string, idx int, fallback string) string {
	if idx < 0 || idx >= len(table) {
		return fallback
	}
	return table[idx]
}
