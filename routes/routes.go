package routes

import (
	"log"

	"shopmart/config"
	"shopmart/controllers"
	"shopmart/middleware"
	"shopmart/repositories"
	"shopmart/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	cfg := config.AppConfig

	cartRepo := repositories.NewCartRepository()
	productRepo := repositories.NewProductRepository()
	orderRepo := repositories.NewOrderRepository()
	userRepo := repositories.NewUserRepository()
	notificationRepo := repositories.NewNotificationRepository()
	templateRepo := repositories.NewEmailTemplateRepository()
	catalogTranslationRepo := repositories.NewCatalogTranslationRepository()

	var mailer services.Mailer
	emailService, err := services.NewEmailService(templateRepo)
	if err != nil {
		log.Printf("Running without SMTP: %v", err)
		mailer = services.LogMailer{}
	} else {
		mailer = emailService
	}

	cartService := services.NewCartService(cartRepo, productRepo, services.PricingRules{
		TaxRate:           cfg.TaxRate,
		ShippingFlatRate:  cfg.ShippingFlatRate,
		FreeShippingAbove: cfg.FreeShippingAbove,
	})
	orderService := services.NewOrderService(orderRepo, userRepo, cartService, mailer, cfg.DefaultLocale)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, mailer, cfg.DefaultLocale)
	translationService := services.NewTranslationService(cfg.TranslationsDir, cfg.DefaultLocale)
	catalogTranslationService := services.NewCatalogTranslationService(catalogTranslationRepo, cfg.DefaultLocale)
	twoFactorService := services.NewTwoFactorService(config.RedisClient, userRepo, mailer, cfg.DefaultLocale)

	authCtrl := controllers.NewAuthController(services.NewAuthService(twoFactorService))
	userCtrl := controllers.NewUserController(services.NewUserService())
	productCtrl := controllers.NewProductController(services.NewProductService())
	cartCtrl := controllers.NewCartController(cartService)
	orderCtrl := controllers.NewOrderController(orderService, cartService)
	notificationCtrl := controllers.NewNotificationController(notificationService)
	templateCtrl := controllers.NewTemplateController(templateRepo, mailer)
	translationCtrl := controllers.NewTranslationController(translationService, catalogTranslationService)
	securityCtrl := controllers.NewSecurityController(twoFactorService)

	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.POST("/auth/register", authCtrl.Register)
	router.POST("/auth/login", authCtrl.Login)
	router.POST("/auth/verify-2fa", authCtrl.VerifyTwoFactor)

	router.GET("/categories", productCtrl.GetAllCategories)
	router.GET("/products", productCtrl.GetAllProducts)
	router.GET("/products/:id", productCtrl.GetProduct)

	router.GET("/translations", translationCtrl.GetMessages)
	router.GET("/translations/locales", translationCtrl.GetLocales)
	router.GET("/translations/:locale", translationCtrl.GetMessages)

	// Cart routes work for guests (X-Session-Id) and logged-in users alike.
	cart := router.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware())
	{
		cart.GET("", cartCtrl.GetCart)
		cart.DELETE("", cartCtrl.ClearCart)
		cart.POST("/items", cartCtrl.AddItem)
		cart.PUT("/items/:id", cartCtrl.UpdateItem)
		cart.DELETE("/items/:id", cartCtrl.RemoveItem)
		cart.POST("/coupon", cartCtrl.ApplyCoupon)
		cart.DELETE("/coupon", cartCtrl.RemoveCoupon)
		cart.GET("/validate", cartCtrl.ValidateStock)
	}

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/profile", authCtrl.GetProfile)
		auth.PUT("/profile", authCtrl.UpdateProfile)
		auth.POST("/profile/photo", authCtrl.UploadPhoto)
		auth.PUT("/profile/password", authCtrl.ChangePassword)

		auth.POST("/security/2fa/enable", securityCtrl.EnableTwoFactor)
		auth.POST("/security/2fa/confirm", securityCtrl.ConfirmTwoFactor)
		auth.POST("/security/2fa/disable", securityCtrl.DisableTwoFactor)

		auth.POST("/cart/merge", cartCtrl.MergeCart)

		auth.POST("/orders/checkout", orderCtrl.Checkout)
		auth.GET("/orders", orderCtrl.GetMyOrders)
		auth.GET("/orders/:id", orderCtrl.GetOrder)
		auth.POST("/orders/:id/cancel", orderCtrl.CancelOrder)

		auth.GET("/notifications", notificationCtrl.GetMyNotifications)
		auth.POST("/notifications/read", notificationCtrl.MarkManyRead)
		auth.POST("/notifications/read-all", notificationCtrl.MarkAllRead)
		auth.POST("/notifications/:id/read", notificationCtrl.MarkRead)
		auth.GET("/notifications/preferences", notificationCtrl.GetPreferences)
		auth.PUT("/notifications/preferences", notificationCtrl.UpdatePreference)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/users", userCtrl.GetAllUsers)
		admin.GET("/users/:id", userCtrl.GetUser)
		admin.POST("/users", userCtrl.CreateUser)
		admin.PUT("/users/:id", userCtrl.UpdateUser)
		admin.DELETE("/users/:id", userCtrl.DeleteUser)

		admin.POST("/products", productCtrl.CreateProduct)
		admin.PUT("/products/:id", productCtrl.UpdateProduct)
		admin.DELETE("/products/:id", productCtrl.DeleteProduct)

		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.PUT("/orders/:id/status", orderCtrl.UpdateStatus)
		admin.PUT("/orders/:id/payment", orderCtrl.UpdatePayment)
		admin.PUT("/orders/:id/tracking", orderCtrl.AddTracking)
		admin.POST("/orders/:id/refund", orderCtrl.Refund)

		admin.POST("/notifications", notificationCtrl.SendNotification)
		admin.POST("/notifications/bulk", notificationCtrl.SendBulk)
		admin.POST("/notifications/:id/retry", notificationCtrl.RetryNotification)

		admin.GET("/templates", templateCtrl.ListTemplates)
		admin.GET("/templates/:id", templateCtrl.GetTemplate)
		admin.POST("/templates", templateCtrl.CreateTemplate)
		admin.PUT("/templates/:id", templateCtrl.UpdateTemplate)
		admin.DELETE("/templates/:id", templateCtrl.DeleteTemplate)
		admin.POST("/templates/:id/preview", templateCtrl.PreviewTemplate)
		admin.POST("/templates/:id/test", templateCtrl.SendTestEmail)

		admin.PUT("/translations", translationCtrl.SetMessage)
		admin.DELETE("/translations/:locale", translationCtrl.DeleteMessage)
		admin.GET("/translations/stats", translationCtrl.GetStats)
		admin.POST("/translations/sync", translationCtrl.SyncMessages)
		admin.PUT("/translations/catalog", translationCtrl.SetCatalogTranslation)
		admin.POST("/translations/catalog/duplicate", translationCtrl.DuplicateCatalog)
		admin.POST("/translations/catalog/:locale/create-missing", translationCtrl.CreateMissingCatalog)
	}

	router.Static("/uploads", cfg.UploadDir)
}
