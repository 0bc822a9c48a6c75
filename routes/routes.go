package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rahulkv7/StyleKart/controllers"
	"github.com/rahulkv7/StyleKart/middleware"
	"github.com/rahulkv7/StyleKart/utils"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/send-otp", controllers.SendOTP)
			auth.POST("/verify-otp", controllers.VerifyOTP)
			auth.GET("/me", middleware.AuthMiddleware(), controllers.GetMe)
		}

		payu := api.Group("/payu")
		{
			payu.POST("/create-payment", controllers.CreatePayment)
			payu.POST("/surl", controllers.PaymentSuccess)
			payu.POST("/furl", controllers.PaymentFailure)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", controllers.CreateOrder)
			orders.GET("", controllers.GetOrders)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
