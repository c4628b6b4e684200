package consts

// 推送通道入站事件
const (
	EventConnect        = "connect"
	EventMessageNew     = "message:new"
	EventMessageEdited  = "message:edited"
	EventMessageDeleted = "message:deleted"
	EventUserTyping     = "user:typing"
	EventUserStopTyping = "user:stop_typing"
	EventMessagesRead   = "messages:read"
	EventReactionAdd    = "reaction:added"
	EventReactionRemove = "reaction:removed"
	EventConvNewMessage = "conversation:new_message"
)

// 推送通道出站事件
const (
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
)
