package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/burakseven/returns-ai/internal/application"
	appanalysis "github.com/burakseven/returns-ai/internal/application/analysis"
	"github.com/burakseven/returns-ai/internal/config"
	domain "github.com/burakseven/returns-ai/internal/domain/analysis"
	aiopenai "github.com/burakseven/returns-ai/internal/infra/ai/openai"
	mysqlp "github.com/burakseven/returns-ai/internal/infra/db/mysql"
	postgresp "github.com/burakseven/returns-ai/internal/infra/db/postgres"
	"github.com/burakseven/returns-ai/internal/infra/httpserver"
	minioStore "github.com/burakseven/returns-ai/internal/infra/storage"
	"github.com/burakseven/returns-ai/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database (mysql primary, postgres alternative)
	var (
		db   *sql.DB
		repo domain.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewAnalysisRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewAnalysisRepository(db)
	}
	defer db.Close()

	// init minio image store
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init classifier + fallback
	classifier := aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, domain.DefaultWarrantyTable)
	fallback := domain.NewFallbackSelector(domain.DefaultFallbackResults(), nil)

	// init service
	svc := &appanalysis.Service{
		Repo:       repo,
		Classifier: classifier,
		Images:     store,
		Fallback:   fallback,
		Clock:      application.SystemClock{},
	}

	// init router
	handler := httpserver.NewRouter(svc, httpserver.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		GeneralPerMinute: cfg.RateLimit.GeneralPerMinute,
		AnalyzePerMinute: cfg.RateLimit.AnalyzePerMinute,
		HealthCheckers: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
