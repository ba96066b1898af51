package main

import (
	"time"

	"neovault/config"
	"neovault/models"
	"neovault/routes"
	"neovault/storage"
	"neovault/uploads"
	"neovault/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Category{}, &models.File{}, &models.AdminSettings{})

	// Seed the admin row at boot so the lazy path never races on cold start.
	store := storage.New(db)
	if _, err := store.GetAdminSettings(); err != nil {
		utils.Sugar.Fatalf("seeding admin settings failed: %v", err)
	}

	if cfg.ReaperEnabled {
		uploads.StartReaper(
			store,
			cfg.UploadDir,
			time.Duration(cfg.ReaperIntervalMinutes)*time.Minute,
			time.Duration(cfg.ReaperRetentionDays)*24*time.Hour,
		)
	}

	r := routes.SetupRouter(db, cfg)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
