package res

import (
	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/types"
)

func init() {
	register(&Schema{
		Kind:     types.PD,
		Command:  netlink.RDMA_NLDEV_CMD_RES_PD_GET,
		List:     netlink.RDMA_NLDEV_ATTR_RES_PD,
		Required: []netlink.AttrID{netlink.RDMA_NLDEV_ATTR_RES_USECNT},
		Owner:    true,
		Filterable: map[string]types.ValueKind{
			"dev":   types.Text,
			"users": types.Numeric,
			"pid":   types.Numeric,
			"ctxn":  types.Numeric,
			"pdn":   types.Numeric,
		},
		fields: []fieldSpec{
			num("pdn", netlink.RDMA_NLDEV_ATTR_RES_PDN),
			key("local_dma_lkey", netlink.RDMA_NLDEV_ATTR_RES_LOCAL_DMA_LKEY),
			num("users", netlink.RDMA_NLDEV_ATTR_RES_USECNT),
			key("unsafe_global_rkey", netlink.RDMA_NLDEV_ATTR_RES_UNSAFE_GLOBAL_RKEY),
			num("ctxn", netlink.RDMA_NLDEV_ATTR_RES_CTXN),
		},
	})
}
