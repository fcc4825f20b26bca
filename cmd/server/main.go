package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/config"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/database"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/handler"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/queue"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional infrastructure: nil disables rate limiting and
	// the scan-page cache but the service still runs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	locations := repository.NewLocationRepo(db)
	inspections := repository.NewInspectionRepo(db)
	photos := repository.NewPhotoRepo(db)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, users, roles),
		Pages:       handler.NewPageHandler(users, roles, inspections),
		Locations:   handler.NewLocationHandler(locations),
		Inspections: handler.NewInspectionHandler(inspections, locations, photos),
		Photos:      handler.NewPhotoHandler(photos, inspections),
		Admin:       handler.NewAdminHandler(cfg, users, roles),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, h, users, roles, rdb)

	// Background consumer writing the inspection audit log. Runs its own
	// reconnect loop; a missing broker only costs the audit trail.
	go func() {
		if err := queue.StartInspectionConsumer(); err != nil {
			log.Printf("inspection consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
