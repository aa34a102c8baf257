package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-trend-tracker/internal/handlers"
	"ai-trend-tracker/internal/llm"
	"ai-trend-tracker/internal/repositories"
	"ai-trend-tracker/internal/services"
	"ai-trend-tracker/pkg/config"
	"ai-trend-tracker/pkg/database"
	"ai-trend-tracker/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		envFile   = flag.String("config", ".env", "Path to .env config file")
		initDB    = flag.Bool("init-db", false, "Initialize database schema and exit")
		stats     = flag.Bool("stats", false, "Show database statistics and exit")
		daily     = flag.Bool("daily", false, "Run the daily trending task")
		weekly    = flag.Bool("weekly", false, "Run the weekly report task")
		serve     = flag.Bool("serve", false, "Run the HTTP server with the in-process scheduler")
		export    = flag.String("export", "", "Export observations to the given xlsx path")
		dryRun    = flag.Bool("dry-run", false, "Run without sending notifications")
		dateFlag  = flag.String("date", "", "Task date (YYYY-MM-DD), default today")
		weekStart = flag.String("week-start", "", "Week start date (YYYY-MM-DD), default this week's Monday")
	)
	flag.Parse()

	logger.Init()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	if err := database.InitSchema(db); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize schema: %v\n", err)
		return 1
	}

	if *initDB {
		fmt.Printf("Database initialized at %s\n", cfg.Database.Path)
		return 0
	}

	// Wire dependencies
	projectRepo := repositories.NewProjectRepository(db)
	trendRepo := repositories.NewTrendRecordRepository(db)
	pushRepo := repositories.NewPushRecordRepository(db)
	weeklyRepo := repositories.NewWeeklyReportRepository(db)

	llmClient := llm.NewOpenAIClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
	aggregator := services.NewAggregatorService(trendRepo)
	classifier := services.NewClassifierService(llmClient)
	scraper := services.NewScraperService(cfg.GitHub.Token)
	notifier := services.NewNotifierService(cfg.Webhook.URL)
	pipeline := services.NewPipelineService(
		projectRepo, trendRepo, pushRepo, weeklyRepo,
		aggregator, classifier, scraper, notifier, llmClient, cfg.Tasks,
	)

	ctx := context.Background()

	switch {
	case *stats:
		return showStats(pipeline)

	case *export != "":
		return runExport(trendRepo, *export, *weekStart)

	case *daily:
		if err := cfg.ValidateTasks(); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			return 1
		}
		date, err := parseDateFlag(*dateFlag, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid date: %v\n", err)
			return 1
		}
		if err := pipeline.RunDaily(ctx, date, *dryRun); err != nil {
			logger.WithError(err).Errorf("Daily task failed")
			return 1
		}
		return 0

	case *weekly:
		if err := cfg.ValidateTasks(); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			return 1
		}
		target, err := parseDateFlag(*weekStart, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid week start: %v\n", err)
			return 1
		}
		if err := pipeline.RunWeekly(ctx, target, *dryRun); err != nil {
			logger.WithError(err).Errorf("Weekly task failed")
			return 1
		}
		return 0

	case *serve:
		return runServer(ctx, cfg, pipeline)

	default:
		flag.Usage()
		return 1
	}
}

func parseDateFlag(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", value)
}

func showStats(pipeline *services.PipelineService) int {
	stats, err := pipeline.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query statistics: %v\n", err)
		return 1
	}

	fmt.Println("Database Statistics")
	fmt.Printf("Total projects: %d\n", stats.TotalProjects)
	fmt.Printf("Total trend records: %d\n", stats.TotalTrendRecords)
	fmt.Println("Recent activity:")
	for _, dc := range stats.RecentActivity {
		fmt.Printf("  %s: %d projects\n", dc.Date, dc.Count)
	}
	return 0
}

func runExport(trendRepo *repositories.TrendRecordRepository, path, weekStart string) int {
	target, err := parseDateFlag(weekStart, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid week start: %v\n", err)
		return 1
	}
	start, end := services.WeekRange(target)

	exporter := services.NewExportService(trendRepo)
	count, err := exporter.ExportRange(start, end, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		return 1
	}

	fmt.Printf("Exported %d observations to %s\n", count, path)
	return 0
}

func runServer(ctx context.Context, cfg *config.Config, pipeline *services.PipelineService) int {
	gin.SetMode(cfg.Server.Mode)

	scheduler := services.NewSchedulerService(pipeline, cfg.Tasks)
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	scheduler.Start(serveCtx)

	router := gin.Default()

	healthHandler := handlers.NewHealthHandler()
	statsHandler := handlers.NewStatsHandler(pipeline)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/stats", statsHandler.Stats)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Errorf("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Errorf("Server shutdown failed")
		return 1
	}

	logger.Infof("Server stopped")
	return 0
}
