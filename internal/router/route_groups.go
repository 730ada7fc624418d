package router

import (
	"quickplate_backend/internal/handlers"
	"quickplate_backend/internal/middleware"
	"quickplate_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.POST("/logout", authHandler.Logout)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupPublicRoutes sets up the routes anyone can call without a token:
// browsing restaurants and menus, reading reviews, checking an offer code
// and submitting a contact-form message.
func SetupPublicRoutes(apiGroup *gin.RouterGroup, restaurantHandler *handlers.RestaurantHandler, offerHandler *handlers.OfferHandler, reviewHandler *handlers.ReviewHandler, messageHandler *handlers.MessageHandler) {
	apiGroup.GET("/restaurants", restaurantHandler.GetRestaurants)
	apiGroup.GET("/restaurants/:restaurantID", restaurantHandler.GetRestaurantByID)
	apiGroup.GET("/restaurants/:restaurantID/reviews", reviewHandler.GetReviews)
	apiGroup.GET("/offers/validate", offerHandler.ValidateOffer)
	apiGroup.POST("/messages", messageHandler.CreateMessage)
}

// SetupPaymentRoutes sets up the inbound payment gateway webhook. The gateway
// authenticates with its API key relationship, not a user token.
func SetupPaymentRoutes(apiGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	apiGroup.POST("/payments/webhook", paymentHandler.GatewayWebhook)
}

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleCustomer), orderHandler.Checkout)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:orderID", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:orderID/status", middleware.RoleAuthMiddleware(models.RoleRestaurant, models.RoleAdmin), orderHandler.AdvanceStatus)
		orderRoutes.POST("/:orderID/cancel", middleware.RoleAuthMiddleware(models.RoleCustomer, models.RoleAdmin), orderHandler.CancelOrder)
	}
}

// SetupRestaurantRoutes sets up the restaurant and menu management routes.
// Reading is public; writing requires a restaurant owner or admin.
func SetupRestaurantRoutes(authenticatedGroup *gin.RouterGroup, restaurantHandler *handlers.RestaurantHandler) {
	restaurantRoutes := authenticatedGroup.Group("/restaurants")
	restaurantRoutes.Use(middleware.RoleAuthMiddleware(models.RoleRestaurant, models.RoleAdmin))
	{
		restaurantRoutes.POST("", restaurantHandler.CreateRestaurant)
		restaurantRoutes.PUT("/:restaurantID", restaurantHandler.UpdateRestaurant)
		restaurantRoutes.DELETE("/:restaurantID", restaurantHandler.DeleteRestaurant)

		restaurantRoutes.POST("/:restaurantID/menu-items", restaurantHandler.CreateMenuItem)
		restaurantRoutes.PUT("/:restaurantID/menu-items/:itemID", restaurantHandler.UpdateMenuItem)
		restaurantRoutes.DELETE("/:restaurantID/menu-items/:itemID", restaurantHandler.DeleteMenuItem)
	}
}

// SetupDeliveryRoutes sets up the delivery person routes.
func SetupDeliveryRoutes(authenticatedGroup *gin.RouterGroup, deliveryHandler *handlers.DeliveryHandler) {
	deliveryRoutes := authenticatedGroup.Group("/delivery")
	deliveryRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDelivery))
	{
		deliveryRoutes.GET("/orders", deliveryHandler.GetEligibleOrders)
		deliveryRoutes.POST("/orders/:orderID/accept", deliveryHandler.AcceptOrder)
		deliveryRoutes.POST("/orders/:orderID/delivered", deliveryHandler.MarkDelivered)
	}
}

// SetupReviewRoutes sets up the authenticated review routes.
func SetupReviewRoutes(authenticatedGroup *gin.RouterGroup, reviewHandler *handlers.ReviewHandler) {
	authenticatedGroup.POST("/restaurants/:restaurantID/reviews", middleware.RoleAuthMiddleware(models.RoleCustomer), reviewHandler.CreateReview)
}

// SetupAdminRoutes sets up the administration routes.
func SetupAdminRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler, offerHandler *handlers.OfferHandler, messageHandler *handlers.MessageHandler) {
	adminRoutes := authenticatedGroup.Group("/admin")
	adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminRoutes.GET("/users", authHandler.GetUsers)
		adminRoutes.PATCH("/users/:userID/active", authHandler.SetUserActive)

		adminRoutes.POST("/offers", offerHandler.CreateOffer)
		adminRoutes.GET("/offers", offerHandler.GetOffers)
		adminRoutes.GET("/offers/:offerID", offerHandler.GetOfferByID)
		adminRoutes.PUT("/offers/:offerID", offerHandler.UpdateOffer)
		adminRoutes.DELETE("/offers/:offerID", offerHandler.DeleteOffer)

		adminRoutes.GET("/messages", messageHandler.GetMessages)
		adminRoutes.GET("/messages/:messageID", messageHandler.GetMessageByID)
		adminRoutes.POST("/messages/:messageID/reply", messageHandler.ReplyMessage)
	}
}
