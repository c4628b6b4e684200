package api

import (
	"Quayside/internal/client/middleware"
	"Quayside/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter 本地 API 路由，仅绑定回环地址供 UI 层访问
func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	r.Use(middleware.TraceMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		chatGroup := apiGroup.Group("/chat")
		{
			chatGroup.GET("/conversations", group.StateHandler.GetConversationList)
			chatGroup.GET("/conversations/:conversation_id/messages", group.StateHandler.GetMessages)
			chatGroup.GET("/conversations/:conversation_id/typing", group.StateHandler.GetTypingUsers)
			chatGroup.GET("/unread", group.StateHandler.GetUnread)

			chatGroup.POST("/conversations/refresh", group.ChatHandler.RefreshConversations)
			chatGroup.POST("/conversations/direct", group.ChatHandler.OpenDirect)
			chatGroup.POST("/conversations/:conversation_id/messages", group.ChatHandler.SendMessage)
			chatGroup.POST("/conversations/:conversation_id/read", group.ChatHandler.MarkAsRead)
			chatGroup.POST("/conversations/:conversation_id/open", group.ChatHandler.OpenConversation)
			chatGroup.POST("/conversations/:conversation_id/close", group.ChatHandler.CloseConversation)
			chatGroup.POST("/conversations/:conversation_id/leave", group.ChatHandler.LeaveConversation)
		}
	}

	return r
}
