package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"medical-app/controllers"
	"medical-app/middlewares"
	"medical-app/models"
	"medical-app/services"
)

// Deps is everything the route table needs wired in from main.
type Deps struct {
	Tokens        *services.TokenService
	WS            *services.WSService
	Auth          *controllers.AuthController
	Conversations *controllers.ConversationController
	Notifications *controllers.NotificationController
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(deps Deps) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	r.Use(cors.New(corsConfig))

	r.GET("/ws", controllers.WSController(deps.WS))

	api := r.Group("/api/v1")

	api.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "success",
			"message":   "Server is running correctly",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api.POST("/users/signup", deps.Auth.SignUp)
	api.POST("/users/login", deps.Auth.Login)
	api.POST("/users/verify", deps.Auth.Verify)
	api.POST("/users/refresh", deps.Auth.Refresh)

	protected := api.Group("")
	protected.Use(middlewares.TokenAuthMiddleware(deps.Tokens))
	{
		protected.GET("/users/me", controllers.GetMe)
		protected.GET("/users/doctors", controllers.ListDoctors)
		protected.PATCH("/users/fcm-token", controllers.UpdateFCMToken)

		protected.POST("/appointments", controllers.CreateAppointment)
		protected.GET("/appointments", controllers.ListAppointments)
		protected.GET("/appointments/:id", controllers.GetAppointment)
		protected.PATCH("/appointments/:id/status", controllers.UpdateAppointmentStatus)

		dashboard := protected.Group("/dashboard")
		dashboard.Use(middlewares.RequireRole(models.RoleDoctor))
		{
			dashboard.GET("/upcoming", controllers.GetUpcomingAppointments)
			dashboard.GET("/counts", controllers.GetAppointmentCounts)
			dashboard.GET("/patients", controllers.GetTotalPatients)
		}

		protected.GET("/conversations", deps.Conversations.ListConversations)
		protected.GET("/conversations/:conversation_id/messages", deps.Conversations.GetMessages)
		protected.PATCH("/conversations/:conversation_id/read", deps.Conversations.MarkRead)

		protected.POST("/notifications/send", deps.Notifications.SendNotification)
		protected.GET("/notifications", deps.Notifications.ListNotifications)
		protected.PATCH("/notifications/:id/read", deps.Notifications.MarkNotificationRead)
	}

	return r
}
