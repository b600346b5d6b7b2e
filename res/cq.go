package res

import (
	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/types"
)

func init() {
	register(&Schema{
		Kind:    types.CQ,
		Command: netlink.RDMA_NLDEV_CMD_RES_CQ_GET,
		List:    netlink.RDMA_NLDEV_ATTR_RES_CQ,
		Required: []netlink.AttrID{
			netlink.RDMA_NLDEV_ATTR_RES_CQE,
			netlink.RDMA_NLDEV_ATTR_RES_USECNT,
		},
		Owner: true,
		Filterable: map[string]types.ValueKind{
			"dev":      types.Text,
			"users":    types.Numeric,
			"poll-ctx": types.Derived,
			"pid":      types.Numeric,
			"cqn":      types.Numeric,
			"ctxn":     types.Numeric,
		},
		fields: []fieldSpec{
			num("cqn", netlink.RDMA_NLDEV_ATTR_RES_CQN),
			num("cqe", netlink.RDMA_NLDEV_ATTR_RES_CQE),
			num("users", netlink.RDMA_NLDEV_ATTR_RES_USECNT),
			optional(derived("poll-ctx", netlink.RDMA_NLDEV_ATTR_RES_POLL_CTX, func(c uint64) string {
				return types.PollContext(c).String()
			})),
			num("ctxn", netlink.RDMA_NLDEV_ATTR_RES_CTXN),
		},
	})
}
