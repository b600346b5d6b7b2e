package res

import (
	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/types"
)

func init() {
	register(&Schema{
		Kind:     types.MR,
		Command:  netlink.RDMA_NLDEV_CMD_RES_MR_GET,
		List:     netlink.RDMA_NLDEV_ATTR_RES_MR,
		Required: []netlink.AttrID{netlink.RDMA_NLDEV_ATTR_RES_MRLEN},
		Owner:    true,
		Filterable: map[string]types.ValueKind{
			"dev":   types.Text,
			"rkey":  types.Numeric,
			"lkey":  types.Numeric,
			"mrlen": types.Numeric,
			"pid":   types.Numeric,
			"mrn":   types.Numeric,
			"pdn":   types.Numeric,
		},
		fields: []fieldSpec{
			num("mrn", netlink.RDMA_NLDEV_ATTR_RES_MRN),
			key("rkey", netlink.RDMA_NLDEV_ATTR_RES_RKEY),
			key("lkey", netlink.RDMA_NLDEV_ATTR_RES_LKEY),
			key("iova", netlink.RDMA_NLDEV_ATTR_RES_IOVA),
			num("mrlen", netlink.RDMA_NLDEV_ATTR_RES_MRLEN),
			num("pdn", netlink.RDMA_NLDEV_ATTR_RES_PDN),
		},
	})
}
