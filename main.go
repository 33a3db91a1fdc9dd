package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/robfig/cron/v3"

	"github.com/umarijaz5156/jobpilot-sub000/config"
	"github.com/umarijaz5156/jobpilot-sub000/database"
	"github.com/umarijaz5156/jobpilot-sub000/handlers"
	"github.com/umarijaz5156/jobpilot-sub000/importer"
	"github.com/umarijaz5156/jobpilot-sub000/syndication"
)

func main() {
	cfg := config.Load()

	db, err := database.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	dispatcher, err := buildDispatcher(cfg, db)
	if err != nil {
		log.Fatal("Failed to build syndication dispatcher:", err)
	}

	jobImporter := importer.New(db)

	app := fiber.New()

	// Middleware
	app.Use(logger.New())

	// Inject dependencies
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("db", db)
		c.Locals("dispatcher", dispatcher)
		c.Locals("importer", jobImporter)
		return c.Next()
	})

	setupRoutes(app)
	startBackgroundSweeps(db)

	log.Printf("🚀 Jobpilot started on http://localhost:%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

func setupRoutes(app *fiber.App) {
	app.Get("/jobs", handlers.JobsHandler)
	app.Get("/jobs/more", handlers.MoreJobsHandler)
	app.Get("/jobs/category/:slug", handlers.CategoryJobsHandler)
	app.Get("/jobs/:id", handlers.JobDetailHandler)
	app.Post("/jobs", handlers.CreateJobHandler)
	app.Put("/jobs/:id", handlers.UpdateJobHandler)
	app.Delete("/jobs/:id", handlers.DeleteJobHandler)
	app.Post("/jobs/:id/apply", handlers.ApplyHandler)
	app.Post("/jobs/:id/bookmark", handlers.BookmarkHandler)
	app.Post("/jobs/:id/revisions", handlers.SubmitRevisionHandler)

	app.Post("/admin/revisions/:id/approve", handlers.ApproveRevisionHandler)
	app.Delete("/admin/companies/:id", handlers.DeleteCompanyHandler)
	app.Post("/admin/import", handlers.ImportJobsHandler)
}

// buildDispatcher registers one adapter per configured destination:
// partner job boards, the government vacancy registry, and the social
// pages listed in the settings row.
func buildDispatcher(cfg *config.Config, db *database.DB) (*syndication.Dispatcher, error) {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	tokens := syndication.NewTokenStore(db.DB)

	var adapters []syndication.Adapter
	for name, url := range cfg.PartnerURLs {
		if url == "" {
			continue
		}
		adapters = append(adapters, syndication.NewPartnerAdapter(name, url, db, client))
	}

	if cfg.GovernmentURL != "" {
		adapters = append(adapters,
			syndication.NewGovernmentAdapter(cfg.GovernmentURL, cfg.GovernmentAPIKey, db, client))
	}

	setting, err := tokens.Get()
	if err != nil {
		return nil, err
	}
	for _, pageID := range splitIDs(setting.FacebookPageIDs) {
		adapters = append(adapters, syndication.NewFacebookAdapter(
			pageID, cfg.FacebookGraphURL, cfg.SiteURL, cfg.SocialWordLimit, tokens, client))
	}
	for _, pageURN := range splitIDs(setting.LinkedInPageIDs) {
		adapters = append(adapters, syndication.NewLinkedInAdapter(
			pageURN, cfg.LinkedInAPIURL, cfg.SiteURL, cfg.SocialWordLimit, tokens, client))
	}

	dispatcher := syndication.NewDispatcher(adapters...)
	log.Printf("Syndication channels configured: %v", dispatcher.Channels())
	return dispatcher, nil
}

func splitIDs(csv string) []string {
	var ids []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// startBackgroundSweeps expires jobs whose deadline has passed and
// clears lapsed featured/highlight promotions.
func startBackgroundSweeps(db *database.DB) {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		n, err := db.ExpireOverdueJobs(time.Now())
		if err != nil {
			log.Printf("❌ Deadline sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("✅ Deadline sweep expired %d jobs", n)
		}
	})

	c.AddFunc("@hourly", func() {
		if err := db.ClearExpiredPromotions(time.Now()); err != nil {
			log.Printf("❌ Promotion sweep failed: %v", err)
		}
	})

	c.Start()
}
