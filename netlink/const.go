package netlink

// All of these constants' names make the linter complain, but we inherited
// them from the kernel's include/uapi/rdma/rdma_netlink.h, so we will keep them.
const (
	RDMA_NLDEV_ATTR_UNSPEC AttrID = iota
	RDMA_NLDEV_ATTR_DEV_INDEX
	RDMA_NLDEV_ATTR_DEV_NAME
	RDMA_NLDEV_ATTR_PORT_INDEX
	RDMA_NLDEV_ATTR_CAP_FLAGS
	RDMA_NLDEV_ATTR_FW_VERSION
	RDMA_NLDEV_ATTR_NODE_GUID
	RDMA_NLDEV_ATTR_SYS_IMAGE_GUID
	RDMA_NLDEV_ATTR_SUBNET_PREFIX
	RDMA_NLDEV_ATTR_LID
	RDMA_NLDEV_ATTR_SM_LID
	RDMA_NLDEV_ATTR_LMC
	RDMA_NLDEV_ATTR_PORT_STATE
	RDMA_NLDEV_ATTR_PORT_PHYS_STATE
	RDMA_NLDEV_ATTR_DEV_NODE_TYPE
	RDMA_NLDEV_ATTR_RES_SUMMARY
	RDMA_NLDEV_ATTR_RES_SUMMARY_ENTRY
	RDMA_NLDEV_ATTR_RES_SUMMARY_ENTRY_NAME
	RDMA_NLDEV_ATTR_RES_SUMMARY_ENTRY_CURR
	RDMA_NLDEV_ATTR_RES_QP
	RDMA_NLDEV_ATTR_RES_QP_ENTRY
	RDMA_NLDEV_ATTR_RES_LQPN
	RDMA_NLDEV_ATTR_RES_RQPN
	RDMA_NLDEV_ATTR_RES_RQ_PSN
	RDMA_NLDEV_ATTR_RES_SQ_PSN
	RDMA_NLDEV_ATTR_RES_PATH_MIG_STATE
	RDMA_NLDEV_ATTR_RES_TYPE
	RDMA_NLDEV_ATTR_RES_STATE
	RDMA_NLDEV_ATTR_RES_PID
	RDMA_NLDEV_ATTR_RES_KERN_NAME
	RDMA_NLDEV_ATTR_RES_CM_ID
	RDMA_NLDEV_ATTR_RES_CM_ID_ENTRY
	RDMA_NLDEV_ATTR_RES_PS
	RDMA_NLDEV_ATTR_RES_SRC_ADDR
	RDMA_NLDEV_ATTR_RES_DST_ADDR
	RDMA_NLDEV_ATTR_RES_CQ
	RDMA_NLDEV_ATTR_RES_CQ_ENTRY
	RDMA_NLDEV_ATTR_RES_CQE
	RDMA_NLDEV_ATTR_RES_USECNT
	RDMA_NLDEV_ATTR_RES_POLL_CTX
	RDMA_NLDEV_ATTR_RES_MR
	RDMA_NLDEV_ATTR_RES_MR_ENTRY
	RDMA_NLDEV_ATTR_RES_RKEY
	RDMA_NLDEV_ATTR_RES_LKEY
	RDMA_NLDEV_ATTR_RES_IOVA
	RDMA_NLDEV_ATTR_RES_MRLEN
	RDMA_NLDEV_ATTR_RES_PD
	RDMA_NLDEV_ATTR_RES_PD_ENTRY
	RDMA_NLDEV_ATTR_RES_LOCAL_DMA_LKEY
	RDMA_NLDEV_ATTR_RES_UNSAFE_GLOBAL_RKEY
	RDMA_NLDEV_ATTR_NDEV_INDEX
	RDMA_NLDEV_ATTR_NDEV_NAME
	RDMA_NLDEV_ATTR_DRIVER
	RDMA_NLDEV_ATTR_DRIVER_ENTRY
	RDMA_NLDEV_ATTR_DRIVER_STRING
	RDMA_NLDEV_ATTR_DRIVER_PRINT_TYPE
	RDMA_NLDEV_ATTR_DRIVER_S32
	RDMA_NLDEV_ATTR_DRIVER_U32
	RDMA_NLDEV_ATTR_DRIVER_S64
	RDMA_NLDEV_ATTR_DRIVER_U64
	RDMA_NLDEV_ATTR_RES_PDN
	RDMA_NLDEV_ATTR_RES_CQN
	RDMA_NLDEV_ATTR_RES_MRN
	RDMA_NLDEV_ATTR_RES_CM_IDN
	RDMA_NLDEV_ATTR_RES_CTXN
	RDMA_NLDEV_ATTR_LINK_TYPE

	// AttrMax bounds the attribute ids we know about. Anything at or above it
	// was added by a newer kernel and is silently ignored.
	AttrMax
)

const (
	RDMA_NLDEV_CMD_UNSPEC Command = iota
	RDMA_NLDEV_CMD_GET
	RDMA_NLDEV_CMD_SET
	RDMA_NLDEV_CMD_NEW
	RDMA_NLDEV_CMD_DEL
	RDMA_NLDEV_CMD_PORT_GET
	RDMA_NLDEV_CMD_PORT_SET
	RDMA_NLDEV_CMD_PORT_NEW
	RDMA_NLDEV_CMD_PORT_DEL
	RDMA_NLDEV_CMD_RES_GET
	RDMA_NLDEV_CMD_RES_QP_GET
	RDMA_NLDEV_CMD_RES_CM_ID_GET
	RDMA_NLDEV_CMD_RES_CQ_GET
	RDMA_NLDEV_CMD_RES_MR_GET
	RDMA_NLDEV_CMD_RES_PD_GET
)

const (
	// RDMA_NL_NLDEV is the netlink client id of the nldev interface.
	RDMA_NL_NLDEV = 5

	RDMA_NLDEV_PRINT_TYPE_UNSPEC = 0
	RDMA_NLDEV_PRINT_TYPE_HEX    = 1
)

// policy mirrors the attribute policy the kernel uses to emit NLDEV messages.
var policy = [AttrMax]AttrType{
	RDMA_NLDEV_ATTR_DEV_INDEX:              TypeU32,
	RDMA_NLDEV_ATTR_DEV_NAME:               TypeString,
	RDMA_NLDEV_ATTR_PORT_INDEX:             TypeU32,
	RDMA_NLDEV_ATTR_CAP_FLAGS:              TypeU64,
	RDMA_NLDEV_ATTR_FW_VERSION:             TypeString,
	RDMA_NLDEV_ATTR_NODE_GUID:              TypeU64,
	RDMA_NLDEV_ATTR_SYS_IMAGE_GUID:         TypeU64,
	RDMA_NLDEV_ATTR_SUBNET_PREFIX:          TypeU64,
	RDMA_NLDEV_ATTR_LID:                    TypeU32,
	RDMA_NLDEV_ATTR_SM_LID:                 TypeU32,
	RDMA_NLDEV_ATTR_LMC:                    TypeU8,
	RDMA_NLDEV_ATTR_PORT_STATE:             TypeU8,
	RDMA_NLDEV_ATTR_PORT_PHYS_STATE:        TypeU8,
	RDMA_NLDEV_ATTR_DEV_NODE_TYPE:          TypeU8,
	RDMA_NLDEV_ATTR_RES_SUMMARY:            TypeNested,
	RDMA_NLDEV_ATTR_RES_SUMMARY_ENTRY:      TypeNested,
	RDMA_NLDEV_ATTR_RES_SUMMARY_ENTRY_NAME: TypeString,
	RDMA_NLDEV_ATTR_RES_SUMMARY_ENTRY_CURR: TypeU64,
	RDMA_NLDEV_ATTR_RES_QP:                 TypeNested,
	RDMA_NLDEV_ATTR_RES_QP_ENTRY:           TypeNested,
	RDMA_NLDEV_ATTR_RES_LQPN:               TypeU32,
	RDMA_NLDEV_ATTR_RES_RQPN:               TypeU32,
	RDMA_NLDEV_ATTR_RES_RQ_PSN:             TypeU32,
	RDMA_NLDEV_ATTR_RES_SQ_PSN:             TypeU32,
	RDMA_NLDEV_ATTR_RES_PATH_MIG_STATE:     TypeU8,
	RDMA_NLDEV_ATTR_RES_TYPE:               TypeU8,
	RDMA_NLDEV_ATTR_RES_STATE:              TypeU8,
	RDMA_NLDEV_ATTR_RES_PID:                TypeU32,
	RDMA_NLDEV_ATTR_RES_KERN_NAME:          TypeString,
	RDMA_NLDEV_ATTR_RES_CM_ID:              TypeNested,
	RDMA_NLDEV_ATTR_RES_CM_ID_ENTRY:        TypeNested,
	RDMA_NLDEV_ATTR_RES_PS:                 TypeU32,
	RDMA_NLDEV_ATTR_RES_SRC_ADDR:           TypeBinary,
	RDMA_NLDEV_ATTR_RES_DST_ADDR:           TypeBinary,
	RDMA_NLDEV_ATTR_RES_CQ:                 TypeNested,
	RDMA_NLDEV_ATTR_RES_CQ_ENTRY:           TypeNested,
	RDMA_NLDEV_ATTR_RES_CQE:                TypeU32,
	RDMA_NLDEV_ATTR_RES_USECNT:             TypeU64,
	RDMA_NLDEV_ATTR_RES_POLL_CTX:           TypeU8,
	RDMA_NLDEV_ATTR_RES_MR:                 TypeNested,
	RDMA_NLDEV_ATTR_RES_MR_ENTRY:           TypeNested,
	RDMA_NLDEV_ATTR_RES_RKEY:               TypeU32,
	RDMA_NLDEV_ATTR_RES_LKEY:               TypeU32,
	RDMA_NLDEV_ATTR_RES_IOVA:               TypeU64,
	RDMA_NLDEV_ATTR_RES_MRLEN:              TypeU64,
	RDMA_NLDEV_ATTR_RES_PD:                 TypeNested,
	RDMA_NLDEV_ATTR_RES_PD_ENTRY:           TypeNested,
	RDMA_NLDEV_ATTR_RES_LOCAL_DMA_LKEY:     TypeU32,
	RDMA_NLDEV_ATTR_RES_UNSAFE_GLOBAL_RKEY: TypeU32,
	RDMA_NLDEV_ATTR_NDEV_INDEX:             TypeU32,
	RDMA_NLDEV_ATTR_NDEV_NAME:              TypeString,
	RDMA_NLDEV_ATTR_DRIVER:                 TypeNested,
	RDMA_NLDEV_ATTR_DRIVER_ENTRY:           TypeNested,
	RDMA_NLDEV_ATTR_DRIVER_STRING:          TypeString,
	RDMA_NLDEV_ATTR_DRIVER_PRINT_TYPE:      TypeU8,
	RDMA_NLDEV_ATTR_DRIVER_S32:             TypeU32,
	RDMA_NLDEV_ATTR_DRIVER_U32:             TypeU32,
	RDMA_NLDEV_ATTR_DRIVER_S64:             TypeU64,
	RDMA_NLDEV_ATTR_DRIVER_U64:             TypeU64,
	RDMA_NLDEV_ATTR_RES_PDN:                TypeU32,
	RDMA_NLDEV_ATTR_RES_CQN:                TypeU32,
	RDMA_NLDEV_ATTR_RES_MRN:                TypeU32,
	RDMA_NLDEV_ATTR_RES_CM_IDN:             TypeU32,
	RDMA_NLDEV_ATTR_RES_CTXN:               TypeU32,
	RDMA_NLDEV_ATTR_LINK_TYPE:              TypeString,
}

var attrName = map[AttrID]string{
	RDMA_NLDEV_ATTR_DEV_INDEX:    "RDMA_NLDEV_ATTR_DEV_INDEX",
	RDMA_NLDEV_ATTR_DEV_NAME:     "RDMA_NLDEV_ATTR_DEV_NAME",
	RDMA_NLDEV_ATTR_PORT_INDEX:   "RDMA_NLDEV_ATTR_PORT_INDEX",
	RDMA_NLDEV_ATTR_RES_QP:       "RDMA_NLDEV_ATTR_RES_QP",
	RDMA_NLDEV_ATTR_RES_CM_ID:    "RDMA_NLDEV_ATTR_RES_CM_ID",
	RDMA_NLDEV_ATTR_RES_CQ:       "RDMA_NLDEV_ATTR_RES_CQ",
	RDMA_NLDEV_ATTR_RES_MR:       "RDMA_NLDEV_ATTR_RES_MR",
	RDMA_NLDEV_ATTR_RES_PD:       "RDMA_NLDEV_ATTR_RES_PD",
	RDMA_NLDEV_ATTR_RES_PID:      "RDMA_NLDEV_ATTR_RES_PID",
	RDMA_NLDEV_ATTR_RES_STATE:    "RDMA_NLDEV_ATTR_RES_STATE",
	RDMA_NLDEV_ATTR_RES_PS:       "RDMA_NLDEV_ATTR_RES_PS",
	RDMA_NLDEV_ATTR_RES_LQPN:     "RDMA_NLDEV_ATTR_RES_LQPN",
	RDMA_NLDEV_ATTR_RES_SQ_PSN:   "RDMA_NLDEV_ATTR_RES_SQ_PSN",
	RDMA_NLDEV_ATTR_RES_TYPE:     "RDMA_NLDEV_ATTR_RES_TYPE",
	RDMA_NLDEV_ATTR_RES_CQE:      "RDMA_NLDEV_ATTR_RES_CQE",
	RDMA_NLDEV_ATTR_RES_USECNT:   "RDMA_NLDEV_ATTR_RES_USECNT",
	RDMA_NLDEV_ATTR_RES_MRLEN:    "RDMA_NLDEV_ATTR_RES_MRLEN",
	RDMA_NLDEV_ATTR_RES_SRC_ADDR: "RDMA_NLDEV_ATTR_RES_SRC_ADDR",
	RDMA_NLDEV_ATTR_RES_DST_ADDR: "RDMA_NLDEV_ATTR_RES_DST_ADDR",
	RDMA_NLDEV_ATTR_DRIVER:       "RDMA_NLDEV_ATTR_DRIVER",
}
