package server

import (
	"context"
	"net/http"
	"time"

	auditdomain "github.com/aerwok/rocketrybox/internal/audit/domain"
	"github.com/aerwok/rocketrybox/internal/config"
	orderdomain "github.com/aerwok/rocketrybox/internal/order/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	walletdomain "github.com/aerwok/rocketrybox/internal/wallet/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server wires the HTTP surface over the shipping core.
type Server struct {
	cfg         config.Config
	log         *zap.Logger
	db          *gorm.DB
	orderSvc    orderdomain.Orchestrator
	walletSvc   walletdomain.Ledger
	ratecardSvc ratecarddomain.Store
	auditSvc    auditdomain.Service

	quoteLimiter *rateLimiter
}

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	OrderSvc    orderdomain.Orchestrator
	WalletSvc   walletdomain.Ledger
	RatecardSvc ratecarddomain.Store
	AuditSvc    auditdomain.Service
}

func New(p Params) *Server {
	return &Server{
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		db:           p.DB,
		orderSvc:     p.OrderSvc,
		walletSvc:    p.WalletSvc,
		ratecardSvc:  p.RatecardSvc,
		auditSvc:     p.AuditSvc,
		quoteLimiter: newRateLimiter(30, time.Minute),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.log))

	router.GET("/healthz", s.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/quotes", s.rateLimited(s.quoteLimiter), s.QuoteShipment)

		api.POST("/orders", s.CreateOrder)
		api.GET("/orders/:id", s.GetOrder)
		api.GET("/orders/:id/track", s.TrackOrder)
		api.POST("/orders/:id/cancel", s.CancelOrder)

		api.GET("/wallet/:seller_id/balance", s.GetWalletBalance)
		api.GET("/wallet/:seller_id/transactions", s.ListWalletTransactions)
		api.POST("/wallet/:seller_id/recharge", s.RechargeWallet)

		admin := api.Group("/admin")
		{
			admin.POST("/rate-cards", s.CreateRateCard)
			admin.GET("/rate-cards", s.ListRateCards)
			admin.PUT("/rate-cards/:id", s.UpdateRateCard)
			admin.POST("/rate-cards/:id/deactivate", s.DeactivateRateCard)
		}
	}

	return router
}

// Healthz reports process liveness and database reachability.
func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) rateLimited(limiter *rateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": "rate_limited", "message": "too many requests"},
			})
			return
		}
		c.Next()
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func runServer(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.Router(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// Module provides the HTTP server to the fx graph.
var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(runServer),
)
