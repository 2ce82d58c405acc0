// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/database"
	"github.com/javajoker/reelshop/internal/handlers"
	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/middleware"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
	"github.com/javajoker/reelshop/internal/workspace"
)

// Deps are the process-wide collaborators the routes need.
type Deps struct {
	Registry *workspace.Registry
	Devices  *database.DeviceRepository
	Media    *services.MediaService
	Metrics  *metrics.AppMetrics
}

func Initialize(cfg *config.Config, d Deps) *gin.Engine {
	// Initialize handlers
	deviceHandler := handlers.NewDeviceHandler(d.Devices, d.Registry, cfg.JWT.DeviceTokenTTL)
	sessionHandler := handlers.NewSessionHandler(d.Media)
	navigationHandler := handlers.NewNavigationHandler()
	cartHandler := handlers.NewCartHandler()
	productHandler := handlers.NewProductHandler(d.Media)
	userHandler := handlers.NewUserHandler()
	chatHandler := handlers.NewChatHandler(d.Media)
	liveHandler := handlers.NewLiveHandler()
	salesHandler := handlers.NewSalesHandler()
	studioHandler := handlers.NewStudioHandler()
	mediaHandler := handlers.NewMediaHandler(d.Media)
	eventsHandler := handlers.NewEventsHandler(cfg.Frontend.BaseURL)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Metrics))
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"version":    cfg.Metrics.ServiceVersion,
			"workspaces": d.Registry.Len(),
		})
	})

	if cfg.AWS.AccessKeyID == "" {
		r.Static("/uploads", cfg.Media.LocalDir)
	}

	// API v1 routes
	v1 := r.Group("/v1")
	{
		v1.POST("/devices", middleware.AuthRateLimit(), deviceHandler.Register)

		// Everything else acts on the workspace of the calling device
		device := v1.Group("")
		device.Use(middleware.DeviceRequired(d.Registry, d.Devices))
		device.Use(middleware.GeneralRateLimit())
		{
			device.GET("/devices/current", deviceHandler.Current)
			device.DELETE("/devices/current", deviceHandler.Forget)
			device.GET("/events", eventsHandler.Subscribe)

			session := device.Group("/session")
			{
				session.POST("/login", middleware.AuthRateLimit(), sessionHandler.Login)
				session.POST("/register", middleware.AuthRateLimit(), sessionHandler.Register)
				session.POST("/password/reset", middleware.AuthRateLimit(), sessionHandler.ResetPassword)
				session.POST("/logout", sessionHandler.Logout)
				session.GET("/me", sessionHandler.Me)
				session.PUT("/password", sessionHandler.ChangePassword)
				session.PUT("/profile", middleware.UploadRateLimit(), sessionHandler.UpdateProfile)
				session.PUT("/language", sessionHandler.SetLanguage)
			}

			team := device.Group("/team")
			{
				team.GET("", sessionHandler.Team)
				team.POST("", sessionHandler.AddTeamMember)
				team.DELETE("/:id", sessionHandler.RemoveTeamMember)
			}

			nav := device.Group("/navigation")
			{
				nav.GET("", navigationHandler.State)
				nav.POST("/push", navigationHandler.Push)
				nav.POST("/back", navigationHandler.Back)
				nav.POST("/reset", navigationHandler.Reset)
				nav.POST("/deep-link", navigationHandler.DeepLink)
				nav.POST("/exit-public", navigationHandler.ExitPublicMode)
			}

			cart := device.Group("/cart")
			{
				cart.GET("", cartHandler.GetCart)
				cart.GET("/basket", cartHandler.Basket)
				cart.POST("/items", cartHandler.AddToCart)
				cart.PUT("/items", cartHandler.UpdateQuantity)
				cart.POST("/checkout", cartHandler.Checkout)
			}

			products := device.Group("/products")
			{
				products.GET("", productHandler.GetProducts)
				products.GET("/liked", productHandler.GetLiked)
				products.GET("/saved", productHandler.GetSaved)
				products.GET("/:id", productHandler.GetProduct)
				products.POST("", middleware.UploadRateLimit(), productHandler.CreateProduct)
				products.PUT("/:id", middleware.UploadRateLimit(), productHandler.UpdateProduct)
				products.POST("/:id/like", productHandler.ToggleLike)
				products.POST("/:id/save", productHandler.ToggleSave)
				products.POST("/:id/view", productHandler.RecordView)
			}

			decks := device.Group("/decks")
			{
				decks.POST("", middleware.UploadRateLimit(), productHandler.CreateDeck)
				decks.PUT("/:id", middleware.UploadRateLimit(), productHandler.UpdateDeck)
				decks.DELETE("/:id", productHandler.DeleteDeck)
			}

			users := device.Group("/users")
			{
				users.GET("/:id", userHandler.GetProfile)
				users.POST("/:id/follow", userHandler.ToggleFollow)
				users.GET("/:id/decks/:deckId", productHandler.GetDeck)
			}

			notifications := device.Group("/notifications")
			{
				notifications.GET("", userHandler.GetNotifications)
				notifications.POST("/read-all", userHandler.MarkAllRead)
				notifications.POST("/:id/open", userHandler.OpenNotification)
			}

			chats := device.Group("/chats")
			{
				chats.GET("", chatHandler.GetChats)
				chats.POST("", chatHandler.OpenChat)
				chats.GET("/:id", chatHandler.GetChat)
				chats.POST("/:id/messages", chatHandler.SendText)
				chats.POST("/:id/audio", middleware.UploadRateLimit(), chatHandler.SendAudio)
				chats.POST("/:id/archive", chatHandler.ToggleArchive)
				chats.POST("/:id/messages/:messageId/edit", chatHandler.BeginPreOrderEdit)
				chats.POST("/:id/messages/:messageId/translate", chatHandler.Translate)
			}
			device.POST("/pre-orders", chatHandler.SendPreOrder)

			device.GET("/sales", salesHandler.GetReport)

			live := device.Group("/live")
			{
				live.GET("", liveHandler.GetStreams)
				live.POST("", liveHandler.ScheduleStream)
				live.GET("/:id", liveHandler.GetStream)
				live.POST("/:id/start", liveHandler.StartStream)
				live.POST("/:id/end", liveHandler.EndStream)
				live.POST("/:id/discount", liveHandler.SetDiscount)
				live.GET("/:id/products/:productId/price", liveHandler.GetPrice)
				live.POST("/:id/host-control", liveHandler.ToggleHostControl)
				live.POST("/:id/pin", liveHandler.PinProduct)
				live.POST("/:id/comments", liveHandler.AddComment)
				live.POST("/:id/like", liveHandler.Like)
				live.POST("/:id/join", liveHandler.Join)
				live.POST("/:id/leave", liveHandler.Leave)
				live.POST("/:id/buy", liveHandler.BuyFromStream)
			}

			studio := device.Group("/studio")
			{
				studio.POST("/scenes", middleware.StudioRateLimit(), studioHandler.GenerateScene)
				studio.POST("/scripts", middleware.StudioRateLimit(), studioHandler.GenerateVideoScript)
				studio.POST("/videos", middleware.StudioRateLimit(), studioHandler.StartVideo)
				studio.GET("/videos", studioHandler.GetVideos)
				studio.GET("/videos/:id", studioHandler.GetVideo)
				studio.DELETE("/videos/:id", studioHandler.CancelVideo)
			}

			device.POST("/media", middleware.UploadRateLimit(), mediaHandler.Upload)
		}
	}

	return r
}
