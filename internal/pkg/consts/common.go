package consts

// 消息类型
const (
	MsgTypeText  = 1
	MsgTypeImage = 2
	MsgTypeFile  = 3
)

const (
	DefaultHistoryPageSize = 50
	DefaultTypingTTLSec    = 10
)
