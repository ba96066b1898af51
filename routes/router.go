package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"neovault/config"
	"neovault/controllers"
	"neovault/middleware"
	"neovault/sessions"
	"neovault/storage"
	"neovault/uploads"
	"neovault/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, cfg config.AppConfig) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.RequestLogger(utils.Logger))
	r.Use(utils.RecoveryWithZap(utils.Logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	store := storage.New(db)

	var sessStore sessions.Store
	if cfg.SessionStore == "redis" {
		sessStore = sessions.NewRedisStore(utils.GetRedis())
	} else {
		sessStore = sessions.NewMemoryStore()
	}
	mgr := sessions.NewManager(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour, sessStore)

	pipeline, err := uploads.New(cfg.UploadDir, cfg.MaxUploadSizeBytes(), store)
	if err != nil {
		utils.Sugar.Fatalf("upload pipeline init failed: %v", err)
	}

	authController := controllers.NewAuthController(store, mgr)
	categoryController := controllers.NewCategoryController(store)
	fileController := controllers.NewFileController(store, pipeline)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	authRequired := middleware.AuthRequired(mgr)

	api.POST("/auth/login", authController.Login)
	api.GET("/auth/user", authRequired, authController.CurrentUser)
	api.POST("/logout", authController.Logout)

	api.GET("/admin/settings", authRequired, authController.GetSettings)
	api.PUT("/admin/settings", authRequired, authController.UpdateSettings)

	api.GET("/categories", categoryController.List)
	api.POST("/categories", authRequired, categoryController.Create)
	api.DELETE("/categories/:id", authRequired, categoryController.Delete)

	api.GET("/files", fileController.List)
	api.POST("/files/upload", authRequired, fileController.Upload)
	api.GET("/files/:id/download", fileController.Download)
	api.DELETE("/files/:id", authRequired, fileController.Delete)
	api.PATCH("/files/:id", authRequired, fileController.Patch)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Message(ctx, http.StatusNotFound, "api route not found")
			return
		}
		ctx.Status(http.StatusNotFound)
	})

	return r
}
