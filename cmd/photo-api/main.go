//	@title			Tangerine Photo API
//	@version		1.0
//	@description	Photo portfolio content API: public gallery and admin catalog management.
//	@BasePath		/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/tangerinesoft/photo-service/docs"
	"github.com/tangerinesoft/photo-service/internal/auth"
	"github.com/tangerinesoft/photo-service/internal/cache"
	"github.com/tangerinesoft/photo-service/internal/config"
	"github.com/tangerinesoft/photo-service/internal/events"
	authHandlers "github.com/tangerinesoft/photo-service/internal/http/handlers/auth"
	"github.com/tangerinesoft/photo-service/internal/http/handlers/categories"
	"github.com/tangerinesoft/photo-service/internal/http/handlers/photos"
	"github.com/tangerinesoft/photo-service/internal/http/handlers/site"
	wsHandlers "github.com/tangerinesoft/photo-service/internal/http/handlers/websocket"
	"github.com/tangerinesoft/photo-service/internal/http/middleware"
	"github.com/tangerinesoft/photo-service/internal/objectstore"
	"github.com/tangerinesoft/photo-service/internal/services/gallery"
	"github.com/tangerinesoft/photo-service/internal/storage/postgres"
	"github.com/tangerinesoft/photo-service/internal/websocket"
)

func main() {
	// load config
	cfg := config.MustLoad()

	level := slog.LevelInfo
	if cfg.Env == "local" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// database setup
	db, err := postgres.NewPostgres(startCtx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(startCtx).Err(); err != nil {
		slog.Warn("Redis unavailable, serving without cache", slog.String("error", err.Error()))
	}

	store, err := objectstore.Open(startCtx, cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize object storage:", err)
	}
	slog.Info("Object storage ready", slog.String("backend", cfg.Storage.Backend))

	authenticator, err := auth.New(cfg.Auth)
	if err != nil {
		log.Fatal("Failed to initialize authentication:", err)
	}

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	catalog := cache.NewCacheService(db, redisClient)
	svc := gallery.New(catalog, store, events.NewEventPublisher(hub), cfg.Storage.PublicBaseURL())

	admin := middleware.AuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.AdminUsername)
	rateLimits := middleware.NewRateLimitConfig(redisClient, cfg.RateLimit)

	// setup router
	router := http.NewServeMux()

	router.HandleFunc("GET /api/health", site.Health())
	router.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Handle("POST /api/auth/login", rateLimits.RateLimitedHandler(middleware.ActionLogin, authHandlers.Login(authenticator)))

	router.HandleFunc("GET /api/photos", photos.List(svc, false))
	router.HandleFunc("GET /api/photos/{id}", photos.Get(svc))
	router.HandleFunc("POST /api/photos/{id}/view", photos.RecordView(svc))
	router.HandleFunc("POST /api/photos/{id}/download", photos.RecordDownload(svc))
	router.Handle("POST /api/photos", admin(rateLimits.RateLimitedHandler(middleware.ActionUpload, photos.Upload(svc, cfg.Upload))))
	router.Handle("PUT /api/photos/reorder", admin(photos.Reorder(svc)))
	router.Handle("PUT /api/photos/{id}", admin(photos.Update(svc)))
	router.Handle("DELETE /api/photos/{id}", admin(photos.Delete(svc)))
	router.Handle("GET /api/admin/photos", admin(photos.List(svc, true)))

	router.HandleFunc("GET /api/categories", categories.List(svc, false))
	router.Handle("GET /api/admin/categories", admin(categories.List(svc, true)))
	router.Handle("POST /api/categories", admin(categories.Create(svc)))
	router.Handle("PUT /api/categories/reorder", admin(categories.Reorder(svc)))
	router.Handle("PUT /api/categories/{id}", admin(categories.Update(svc)))
	router.Handle("DELETE /api/categories/{id}", admin(categories.Delete(svc)))

	router.HandleFunc("GET /api/settings", site.Settings(svc))
	router.Handle("PUT /api/settings", admin(site.UpdateSettings(svc)))
	router.Handle("POST /api/stats/visit", rateLimits.RateLimitedHandler(middleware.ActionVisit, site.RecordVisit(svc)))
	router.Handle("GET /api/admin/stats", admin(site.Stats(svc)))

	router.Handle("GET /api/admin/cache", admin(cache.GetCacheStats(redisClient)))
	router.Handle("DELETE /api/admin/cache", admin(cache.ClearCache(redisClient)))

	// token travels in the query string
	router.HandleFunc("GET /api/admin/ws", wsHandlers.WebSocketHandler(hub, cfg.Auth.JWTSecret, cfg.Auth.AdminUsername))

	handler := chi.Chain(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		middleware.RequestLog(logger),
		chiMiddleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}),
	).Handler(router)

	server := http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	slog.Info("server started", slog.String("address", cfg.HTTPServer.Address), slog.String("env", cfg.Env))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
