package router

import (
	"time"

	"jelajah/config"
	"jelajah/internal/domain"
	"jelajah/internal/handler"
	"jelajah/internal/middleware"
	"jelajah/internal/repository"
	"jelajah/internal/service"
	"jelajah/internal/ws"
	"jelajah/pkg/cloudinary"
	"jelajah/pkg/gemini"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, gem gemini.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	clusterRepo := repository.NewClusterRepository(db)
	eventRepo := repository.NewEventRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	itineraryRepo := repository.NewItineraryRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	hub := ws.NewHub()
	feed := ws.NewChangefeed(hub)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, feed)
	grantSvc := service.NewGrantService(grantRepo, userRepo, notifSvc, feed)
	plannerSvc := service.NewPlannerService(gem, clusterRepo, itineraryRepo, feed)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	meHandler := handler.NewMeHandler(userRepo, authSvc, cloud)
	clusterHandler := handler.NewClusterHandler(clusterRepo, plannerSvc, cloud, feed)
	eventHandler := handler.NewEventHandler(eventRepo, feed)
	reviewHandler := handler.NewReviewHandler(reviewRepo, clusterRepo, feed)
	itineraryHandler := handler.NewItineraryHandler(itineraryRepo, plannerSvc, feed)
	grantHandler := handler.NewGrantHandler(grantSvc, grantRepo, cloud)
	notificationHandler := handler.NewNotificationHandler(notifSvc)
	adminHandler := handler.NewAdminHandler(adminRepo, userRepo, feed)

	authMw := middleware.AuthRequired(&cfg.JWT)
	elevatedMw := middleware.ElevatedRequired()
	adminMw := middleware.AdminRequired()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("", meHandler.Get)
			me.PATCH("", meHandler.Update)
			me.POST("/avatar", meHandler.UploadAvatar)
		}

		// Catalog browsing is public; management requires a role.
		clusters := api.Group("/clusters")
		{
			clusters.GET("", clusterHandler.List)
			clusters.GET("/:id", clusterHandler.Get)
			clusters.GET("/:id/reviews", reviewHandler.ListByCluster)

			clusters.POST("", authMw, middleware.RequireRole(domain.RoleAdmin, domain.RoleEditor, domain.RolePlayer), clusterHandler.Create)
			clusters.PATCH("/:id", authMw, clusterHandler.Update)
			clusters.DELETE("/:id", authMw, clusterHandler.Delete)
			clusters.POST("/:id/image", authMw, clusterHandler.UploadImage)
			clusters.POST("/:id/describe", authMw, clusterHandler.GenerateDescription)
			clusters.POST("/import", authMw, elevatedMw, clusterHandler.ImportCSV)

			clusters.POST("/:id/reviews", authMw, reviewHandler.Create)
			clusters.DELETE("/:id/reviews/:review_id", authMw, reviewHandler.Delete)
		}

		events := api.Group("/events")
		{
			events.GET("", eventHandler.List)
			events.GET("/:id", eventHandler.Get)
			events.POST("", authMw, elevatedMw, eventHandler.Create)
			events.PATCH("/:id", authMw, elevatedMw, eventHandler.Update)
			events.DELETE("/:id", authMw, elevatedMw, eventHandler.Delete)
		}

		itineraries := api.Group("/itineraries")
		itineraries.Use(authMw)
		{
			itineraries.GET("", itineraryHandler.ListMine)
			itineraries.POST("", itineraryHandler.Create)
			itineraries.POST("/suggest", itineraryHandler.Suggest)
			itineraries.GET("/:id", itineraryHandler.Get)
			itineraries.DELETE("/:id", itineraryHandler.Delete)
			itineraries.POST("/:id/items", itineraryHandler.AddItem)
			itineraries.DELETE("/:id/items/:item_id", itineraryHandler.RemoveItem)
		}

		grants := api.Group("/grants")
		grants.Use(authMw)
		{
			grants.POST("", grantHandler.Submit)
			grants.GET("/mine", grantHandler.ListMine)
			grants.GET("/:id", grantHandler.Get)
			grants.POST("/:id/reapply", grantHandler.Reapply)
			grants.POST("/:id/accept-offer", grantHandler.AcceptOffer)
			grants.POST("/:id/decline-offer", grantHandler.DeclineOffer)
			grants.POST("/:id/reports/early", grantHandler.SubmitReport("early"))
			grants.POST("/:id/reports/final", grantHandler.SubmitReport("final"))

			// Staff review actions. The service re-checks the caller's
			// role from the database; middleware is a first gate only.
			staff := grants.Group("")
			staff.Use(elevatedMw)
			{
				staff.GET("", grantHandler.ListAll)
				staff.POST("/:id/reject", grantHandler.Reject)
				staff.POST("/:id/offer", grantHandler.MakeConditionalOffer)
				staff.POST("/:id/reports/early/approve", grantHandler.ApproveEarlyReport)
				staff.POST("/:id/reports/early/reject", grantHandler.RejectEarlyReport)
				staff.POST("/:id/reports/final/reject", grantHandler.RejectFinalReport)
				staff.POST("/:id/complete", grantHandler.Complete)
			}
		}

		notifications := api.Group("/notifications")
		notifications.Use(authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.Clear)
			notifications.POST("/broadcast", elevatedMw, notificationHandler.Broadcast)
			notifications.POST("/banner", elevatedMw, notificationHandler.SetBanner)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, elevatedMw)
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/stats/signups", adminHandler.UserSignups)
			admin.GET("/stats/applications", adminHandler.ApplicationVolume)
			admin.PATCH("/users/:id/role", adminMw, adminHandler.SetUserRole)
		}
	}

	r.GET("/ws/changes", ws.UpgradeChangesWS(&cfg.JWT, feed))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "ws_clients": hub.ClientCount()})
	})

	return r
}
