package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/browser-automation/apitoken"
	"github.com/hairizuan-noorazman/browser-automation/browser"
	"github.com/hairizuan-noorazman/browser-automation/capability"
	"github.com/hairizuan-noorazman/browser-automation/cmd/server/handlers"
	"github.com/hairizuan-noorazman/browser-automation/database"
	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/runlog"
	"github.com/hairizuan-noorazman/browser-automation/script"
	"github.com/hairizuan-noorazman/browser-automation/storage"
	"github.com/hairizuan-noorazman/browser-automation/webhook"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogrusLogger(cfg.Log.Level)
	log.Info(ctx, "starting server", map[string]interface{}{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	// Stores are optional: without a database the service still serves every
	// capability, but scripts and run logs are unavailable.
	var (
		scriptStore script.Store
		runStore    runlog.Store
		tokenStore  apitoken.Store
	)

	if cfg.Database.Enabled {
		db, err := database.Connect(database.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			Database:     cfg.Database.Database,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		defer sqlDB.Close()

		log.Info(ctx, "database connected", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Database,
		})

		scriptStore = script.NewMySQLStore(db, log)
		runStore = runlog.NewMySQLStore(db, log)
		tokenStore = apitoken.NewMySQLStore(db, log)
	}

	blobs, err := storage.NewBlobStorage(storage.Config{
		Type:    cfg.Storage.Type,
		BaseDir: cfg.Storage.BaseDir,
		Bucket:  cfg.Storage.S3Bucket,
		Region:  cfg.Storage.S3Region,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	engine := browser.NewEngine(browser.Config{
		RemoteURL:     cfg.Browser.RemoteURL,
		Headless:      cfg.Browser.Headless,
		LaunchTimeout: cfg.Browser.LaunchTimeout,
	}, log)

	webhooks := webhook.NewClient(nil, log)

	svc := capability.NewService(engine, scriptStore, webhooks, blobs, runStore, log)

	router := mux.NewRouter()
	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	if cfg.Auth.Enabled {
		if tokenStore == nil {
			return fmt.Errorf("auth requires the database to be enabled")
		}
		authMiddleware := handlers.NewAuthMiddleware(tokenStore, log)
		apiRouter.Use(authMiddleware.Handler)
	}

	capHandler := handlers.NewCapabilityHandler(svc, log)
	apiRouter.HandleFunc("/screenshot", capHandler.Screenshot).Methods("POST")
	apiRouter.HandleFunc("/pdf", capHandler.PDF).Methods("POST")
	apiRouter.HandleFunc("/scrape", capHandler.Scrape).Methods("POST")
	apiRouter.HandleFunc("/html", capHandler.HTML).Methods("POST")
	apiRouter.HandleFunc("/element-exists", capHandler.ElementExists).Methods("POST")
	apiRouter.HandleFunc("/actions", capHandler.Actions).Methods("POST")
	apiRouter.HandleFunc("/cookies", capHandler.Cookies).Methods("POST")
	apiRouter.HandleFunc("/exec", capHandler.Exec).Methods("POST")

	if scriptStore != nil {
		scriptHandler := handlers.NewScriptHandler(scriptStore, log)
		apiRouter.HandleFunc("/scripts", scriptHandler.Create).Methods("POST")
		apiRouter.HandleFunc("/scripts", scriptHandler.List).Methods("GET")
		apiRouter.HandleFunc("/scripts/{key}", scriptHandler.Get).Methods("GET")
		apiRouter.HandleFunc("/scripts/{key}", scriptHandler.Update).Methods("PUT")
		apiRouter.HandleFunc("/scripts/{key}", scriptHandler.Delete).Methods("DELETE")
	}

	if runStore != nil {
		runHandler := handlers.NewRunHandler(runStore, log)
		apiRouter.HandleFunc("/runs", runHandler.List).Methods("GET")
		apiRouter.HandleFunc("/runs/{id}", runHandler.Get).Methods("GET")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	// Drain in-flight HTTP requests first, then tear down the shared browser.
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := engine.Close(); err != nil {
		log.Error(ctx, "browser engine shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}
