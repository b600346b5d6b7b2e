package res

import (
	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/types"
)

func init() {
	register(&Schema{
		Kind:    types.QP,
		Command: netlink.RDMA_NLDEV_CMD_RES_QP_GET,
		List:    netlink.RDMA_NLDEV_ATTR_RES_QP,
		Required: []netlink.AttrID{
			netlink.RDMA_NLDEV_ATTR_RES_LQPN,
			netlink.RDMA_NLDEV_ATTR_RES_SQ_PSN,
			netlink.RDMA_NLDEV_ATTR_RES_TYPE,
			netlink.RDMA_NLDEV_ATTR_RES_STATE,
		},
		Owner: true,
		Link:  true,
		Filterable: map[string]types.ValueKind{
			"link":           types.Text,
			"lqpn":           types.Numeric,
			"rqpn":           types.Numeric,
			"pid":            types.Numeric,
			"sq-psn":         types.Numeric,
			"rq-psn":         types.Numeric,
			"type":           types.Derived,
			"path-mig-state": types.Derived,
			"state":          types.Derived,
			"pdn":            types.Numeric,
		},
		fields: []fieldSpec{
			num("lqpn", netlink.RDMA_NLDEV_ATTR_RES_LQPN),
			optional(num("rqpn", netlink.RDMA_NLDEV_ATTR_RES_RQPN)),
			derived("type", netlink.RDMA_NLDEV_ATTR_RES_TYPE, func(c uint64) string {
				return types.QPType(c).String()
			}),
			derived("state", netlink.RDMA_NLDEV_ATTR_RES_STATE, func(c uint64) string {
				return types.QPState(c).String()
			}),
			optional(num("rq-psn", netlink.RDMA_NLDEV_ATTR_RES_RQ_PSN)),
			num("sq-psn", netlink.RDMA_NLDEV_ATTR_RES_SQ_PSN),
			optional(derived("path-mig-state", netlink.RDMA_NLDEV_ATTR_RES_PATH_MIG_STATE, func(c uint64) string {
				return types.PathMigState(c).String()
			})),
			num("pdn", netlink.RDMA_NLDEV_ATTR_RES_PDN),
		},
	})
}
