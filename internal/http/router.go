package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/studyqr/api/internal/auth"
	"github.com/studyqr/api/internal/cache"
	"github.com/studyqr/api/internal/config"
	"github.com/studyqr/api/internal/http/handlers"
	"github.com/studyqr/api/internal/http/middlewares"
	"github.com/studyqr/api/internal/observability"
	"github.com/studyqr/api/internal/repo/postgres"
	"github.com/studyqr/api/internal/service"
	"github.com/studyqr/api/internal/utils"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry for this process
	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware([]string{cfg.PublicURL}))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxUploadBytes))
	r.Use(otelgin.Middleware("studyqr-api"))
	r.Use(prom.GinHandleMiddleware())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// wire up repositories and services
	usersRepo := postgres.NewUsersRepo(pool, prom)
	notesRepo := postgres.NewNotesRepo(pool, prom)

	links := utils.NewLinkBuilder(cfg.PublicURL)
	userSvc := service.NewUserService(usersRepo)
	noteSvc := service.NewNoteService(notesRepo, links)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// hot note reads go through a cache; Redis when configured, local TTL
	// cache otherwise
	var noteCache cache.Store
	if cfg.RedisAddr != "" {
		noteCache = cache.NewRedis(cache.RedisConfig{Addr: cfg.RedisAddr, TTL: 30 * time.Second})
	} else {
		noteCache = cache.New(30 * time.Second)
	}

	authHandler := handlers.NewAuthHandler(userSvc, jwtManager)
	usersHandler := handlers.NewUsersHandler(userSvc)
	notesHandler := handlers.NewNotesHandlerWithCache(noteSvc, noteCache)

	// auth endpoints get a per-IP limiter on top of the JSON guard
	rl := middlewares.NewRateLimiter(10, time.Minute)

	authGroup := r.Group("/auth", middlewares.RequireJSON(), rl.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// users
	r.GET("/users", usersHandler.ListUsers)
	r.PUT("/users/:id", authMW.RequireAuth(), middlewares.RequireJSON(), usersHandler.UpdateUserName)
	r.DELETE("/users/:id", authMW.RequireAuth(), usersHandler.DeleteUser)

	// notes; reads are public so scanned QR links work without a login
	r.POST("/notes", authMW.RequireAuth(), notesHandler.CreateNote)
	r.GET("/notes", notesHandler.ListNotes)
	r.GET("/notes/:id", notesHandler.GetNoteById)
	r.GET("/notes/view/:id", notesHandler.GetNoteById)
	r.GET("/notes/:id/download", notesHandler.DownloadAttachment)
	r.GET("/notes/user/:id", notesHandler.ListNotesByUser)
	r.PUT("/notes/:id", authMW.RequireAuth(), middlewares.RequireJSON(), notesHandler.UpdateNote)
	r.PUT("/notes/:id/qr", authMW.RequireAuth(), middlewares.RequireJSON(), notesHandler.UpdateNoteQr)
	r.DELETE("/notes/:id", authMW.RequireAuth(), notesHandler.DeleteNote)

	return r
}
