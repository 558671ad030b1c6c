package routes

import (
	"github.com/flocknet/flock-backend/internal/handler"
	"github.com/flocknet/flock-backend/internal/middleware"
	"github.com/flocknet/flock-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	conversationHandler *handler.ConversationHandler,
	notificationHandler *handler.NotificationHandler,
	relationshipHandler *handler.RelationshipHandler,
	mediaHandler *handler.MediaHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1", middleware.JWTAuth(jwtManager))

	// Conversations (DM threads)
	conversations := api.Group("/conversations")
	{
		conversations.POST("", conversationHandler.OpenConversation)
		conversations.GET("", conversationHandler.ListConversations)
		conversations.GET("/unread-count", conversationHandler.UnreadCount)
		conversations.GET("/:id/messages", conversationHandler.ListMessages)
		conversations.POST("/:id/messages", conversationHandler.SendMessage)
		conversations.POST("/:id/read", conversationHandler.MarkRead)
	}

	// Message-level operations
	messages := api.Group("/messages")
	{
		messages.POST("/:id/reactions", conversationHandler.React)
		messages.DELETE("/:id", conversationHandler.DeleteMessage)
	}

	// Notifications
	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
	}

	// Relationship edges
	users := api.Group("/users")
	{
		users.POST("/:id/follow", relationshipHandler.Follow)
		users.DELETE("/:id/follow", relationshipHandler.Unfollow)
		users.POST("/:id/block", relationshipHandler.Block)
		users.DELETE("/:id/block", relationshipHandler.Unblock)
		users.POST("/:id/mute", relationshipHandler.Mute)
		users.DELETE("/:id/mute", relationshipHandler.Unmute)
	}

	// Media uploads
	media := api.Group("/media")
	{
		media.POST("", mediaHandler.Upload)
		media.DELETE("", mediaHandler.Delete)
	}

	// WebSocket upgrade (token also accepted as query param)
	router.GET("/ws", middleware.JWTAuth(jwtManager), wsHandler.Connect)
}
