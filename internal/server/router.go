package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/veriflow-backend/internal/handlers"
)

type RouterConfig struct {
	StripeWebhookHandler *handlers.StripeWebhookHandler
	ContractEventHandler *handlers.ContractEventHandler
	NudgeHandler         *handlers.NudgeHandler
	AllowOrigins         []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// Inbound event surfaces. These are machine-to-machine: the payment
	// provider signs its payloads, the other two sit behind the ingress.
	router.POST("/webhooks/stripe", cfg.StripeWebhookHandler.Handle)
	router.POST("/events/contract", cfg.ContractEventHandler.Handle)
	router.POST("/tasks/nudge-check", cfg.NudgeHandler.Run)

	return router
}
