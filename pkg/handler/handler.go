package handler

import (
	"voltage_wallet_demo/pkg/middleware"
	"voltage_wallet_demo/pkg/service"
	"voltage_wallet_demo/pkg/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service      *service.Service
	sessions     *session.Manager
	allowOrigins []string
}

func NewHandler(service *service.Service, sessions *session.Manager, allowOrigins []string) *Handler {
	return &Handler{
		service:      service,
		sessions:     sessions,
		allowOrigins: allowOrigins,
	}
}

func (h *Handler) InitRoute() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     h.allowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", middleware.SessionHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	api := router.Group("/api", middleware.SessionMiddleware(h.sessions))
	{
		wallet := api.Group("/wallet")
		{
			wallet.GET("/balance", h.GetBalance)
			wallet.POST("/refresh", h.RefreshBalance)
			wallet.GET("/ledger", h.GetLedger)
		}

		payments := api.Group("/payments")
		{
			payments.GET("", h.ListPayments)
			payments.POST("/send", h.Send)
			payments.POST("/receive", h.Receive)
			payments.GET("/:id", h.GetPayment)
			payments.GET("/:id/history", h.GetPaymentHistory)
			payments.GET("/:id/status", h.GetPaymentStatus)
		}

		api.GET("/assets", h.GetAssets)
		api.POST("/validate", h.Validate)
		api.DELETE("/session", h.CloseSession)
	}
	return router
}
