package api

import "Quayside/internal/client/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	ChatHandler  *handler.ChatHandler
	StateHandler *handler.StateHandler
}
