package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mausamcrm/platform/internal/authorization"
	"github.com/mausamcrm/platform/internal/config"
	signupdomain "github.com/mausamcrm/platform/internal/signup/domain"
	subscriptiondomain "github.com/mausamcrm/platform/internal/subscription/domain"
	tenantdomain "github.com/mausamcrm/platform/internal/tenant/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config

	signupsvc       signupdomain.Service
	tenantSvc       tenantdomain.Service
	subscriptionSvc subscriptiondomain.Service
	authzSvc        *authorization.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Signupsvc       signupdomain.Service
	TenantSvc       tenantdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	AuthzSvc        *authorization.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		signupsvc:       p.Signupsvc,
		tenantSvc:       p.TenantSvc,
		subscriptionSvc: p.SubscriptionSvc,
		authzSvc:        p.AuthzSvc,
	}

	svc.registerAuthRoutes()
	svc.registerSubscriptionRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")
	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
}

func (s *Server) registerSubscriptionRoutes() {
	subs := s.engine.Group("/api/subscription")
	subs.Use(s.requireValidationSecret())

	subs.GET("/status/:subdomain", s.SubscriptionStatus)
	subs.POST("/:subdomain", s.UpsertSubscription)
	subs.POST("/:subdomain/switch", s.SwitchSubscription)
	subs.POST("/:subdomain/cancel", s.CancelSubscription)
	subs.PUT("/:subdomain/status", s.UpdateSubscriptionStatus)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
