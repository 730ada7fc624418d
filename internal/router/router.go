package router

import (
	"database/sql"

	"quickplate_backend/internal/handlers"
	"quickplate_backend/internal/middleware"
	"quickplate_backend/internal/repositories"
	"quickplate_backend/internal/services"
	"quickplate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	restaurantRepo := repositories.NewRestaurantRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	offerRepo := repositories.NewOfferRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)

	// Initialize Services
	gateway := services.NewHostedCheckoutGateway(
		utils.Getenv("PAYMENT_GATEWAY_URL", "https://api.payments.example.com"),
		utils.Getenv("PAYMENT_API_KEY", ""),
	)

	authService := services.NewAuthService(userRepo, db)
	restaurantService := services.NewRestaurantService(restaurantRepo, db)
	offerService := services.NewOfferService(offerRepo, db)
	orderService := services.NewOrderService(orderRepo, restaurantRepo, offerRepo, offerService, gateway, db)
	deliveryService := services.NewDeliveryService(orderRepo, db)
	paymentService := services.NewPaymentService(orderRepo, offerRepo, db)
	messageService := services.NewMessageService(messageRepo, db)
	reviewService := services.NewReviewService(reviewRepo, restaurantRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)
	offerHandler := handlers.NewOfferHandler(offerService)
	orderHandler := handlers.NewOrderHandler(orderService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	messageHandler := handlers.NewMessageHandler(messageService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	apiV1 := engine.Group("/api/v1")

	// Public routes: browsing, auth and inbound webhooks need no token.
	SetupAuthRoutes(apiV1, authHandler)
	SetupPublicRoutes(apiV1, restaurantHandler, offerHandler, reviewHandler, messageHandler)
	SetupPaymentRoutes(apiV1, paymentHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupOrderRoutes(authenticated, orderHandler)
		SetupRestaurantRoutes(authenticated, restaurantHandler)
		SetupDeliveryRoutes(authenticated, deliveryHandler)
		SetupReviewRoutes(authenticated, reviewHandler)
		SetupAdminRoutes(authenticated, authHandler, offerHandler, messageHandler)
	}
}
