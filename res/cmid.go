package res

import (
	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/types"
)

func init() {
	register(&Schema{
		Kind:    types.CMID,
		Command: netlink.RDMA_NLDEV_CMD_RES_CM_ID_GET,
		List:    netlink.RDMA_NLDEV_ATTR_RES_CM_ID,
		Required: []netlink.AttrID{
			netlink.RDMA_NLDEV_ATTR_RES_STATE,
			netlink.RDMA_NLDEV_ATTR_RES_PS,
		},
		Owner: true,
		Link:  true,
		Filterable: map[string]types.ValueKind{
			"link":     types.Text,
			"lqpn":     types.Numeric,
			"qp-type":  types.Derived,
			"state":    types.Derived,
			"ps":       types.Derived,
			"pid":      types.Numeric,
			"src-addr": types.Text,
			"src-port": types.Numeric,
			"dst-addr": types.Text,
			"dst-port": types.Numeric,
			"cm-idn":   types.Numeric,
		},
		fields: []fieldSpec{
			num("cm-idn", netlink.RDMA_NLDEV_ATTR_RES_CM_IDN),
			optional(num("lqpn", netlink.RDMA_NLDEV_ATTR_RES_LQPN)),
			optional(derived("qp-type", netlink.RDMA_NLDEV_ATTR_RES_TYPE, func(c uint64) string {
				return types.QPType(c).String()
			})),
			derived("state", netlink.RDMA_NLDEV_ATTR_RES_STATE, func(c uint64) string {
				return types.CMState(c).String()
			}),
			derived("ps", netlink.RDMA_NLDEV_ATTR_RES_PS, func(c uint64) string {
				return types.PortSpace(c).String()
			}),
		},
		addrs: []addrSpec{
			{"src-addr", netlink.RDMA_NLDEV_ATTR_RES_SRC_ADDR},
			{"dst-addr", netlink.RDMA_NLDEV_ATTR_RES_DST_ADDR},
		},
	})
}
