package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/recvlabs/recv/internal/config"
	creditdomain "github.com/recvlabs/recv/internal/credit/domain"
	entitlementdomain "github.com/recvlabs/recv/internal/entitlement/domain"
	obslogger "github.com/recvlabs/recv/internal/observability/logger"
	obsmetrics "github.com/recvlabs/recv/internal/observability/metrics"
	paymentdomain "github.com/recvlabs/recv/internal/payment/domain"
	"github.com/recvlabs/recv/internal/providers/ai"
	"github.com/recvlabs/recv/internal/ratelimit"
	resourcedomain "github.com/recvlabs/recv/internal/resource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, reg *prometheus.Registry, m *obsmetrics.Metrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           cfg.Environment != "production",
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	db        *gorm.DB
	log       *zap.Logger
	profiles  entitlementdomain.Service
	credits   creditdomain.Service
	resources resourcedomain.Service
	payments  paymentdomain.Service
	aiClient  ai.Generator
	aiLimiter *ratelimit.AILimiter
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	Profiles  entitlementdomain.Service
	Credits   creditdomain.Service
	Resources resourcedomain.Service
	Payments  paymentdomain.Service
	AIClient  ai.Generator
	AILimiter *ratelimit.AILimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		db:        p.DB,
		log:       p.Log.Named("http.server"),
		profiles:  p.Profiles,
		credits:   p.Credits,
		resources: p.Resources,
		payments:  p.Payments,
		aiClient:  p.AIClient,
		aiLimiter: p.AILimiter,
	}

	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// The webhook sender is not a user; the provider round trip inside
	// reconciliation is its authentication.
	api.POST("/payments/webhooks/notify", s.HandlePaymentNotification)

	authed := api.Group("", s.IdentityRequired())

	authed.POST("/profile", s.ProvisionProfile)
	authed.GET("/entitlement", s.GetEntitlement)

	// -------- Credit-consuming AI actions --------
	aiRoutes := authed.Group("", s.AIRateLimit())
	aiRoutes.POST("/cv/analyze", s.AnalyzeCV)
	aiRoutes.POST("/cv/refine", s.RefineCV)
	aiRoutes.POST("/cover-letters/generate", s.GenerateCoverLetter)

	// -------- Resources --------
	authed.POST("/resources", s.CreateResource)
	authed.GET("/resources", s.ListResources)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
