package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/customer"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	"github.com/smallbiznis/bizledger/internal/inventory"
	"github.com/smallbiznis/bizledger/internal/invoice"
	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
	obslogger "github.com/smallbiznis/bizledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bizledger/internal/observability/metrics"
	"github.com/smallbiznis/bizledger/internal/payment"
	paymentdomain "github.com/smallbiznis/bizledger/internal/payment/domain"
	"github.com/smallbiznis/bizledger/internal/recurring"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	engine *gin.Engine
	cfg    config.Config

	invoiceSvc  invoicedomain.Service
	paymentSvc  paymentdomain.Service
	customerSvc customerdomain.Service
	scheduler   *recurring.Scheduler
}

type ServerParam struct {
	fx.In

	Engine      *gin.Engine
	Cfg         config.Config
	InvoiceSvc  invoicedomain.Service
	PaymentSvc  paymentdomain.Service
	CustomerSvc customerdomain.Service
	Scheduler   *recurring.Scheduler
}

func NewServer(p ServerParam) *Server {
	s := &Server{
		engine:      p.Engine,
		cfg:         p.Cfg,
		invoiceSvc:  p.InvoiceSvc,
		paymentSvc:  p.PaymentSvc,
		customerSvc: p.CustomerSvc,
		scheduler:   p.Scheduler,
	}
	s.registerRoutes()
	return s
}

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(TenantContext())

	v1.POST("/invoices", s.CreateInvoice)
	v1.GET("/invoices", s.ListInvoices)
	v1.GET("/invoices/stats", s.GetInvoiceStats)
	v1.GET("/invoices/:id", s.GetInvoiceByID)
	v1.PATCH("/invoices/:id", s.UpdateInvoice)
	v1.POST("/invoices/:id/status", s.SetInvoiceStatus)
	v1.DELETE("/invoices/:id", s.DeleteInvoice)
	v1.GET("/invoices/:id/payments", s.ListInvoicePayments)
	v1.POST("/invoices/:id/payments", s.ApplyPayment)

	v1.GET("/payments", s.ListPayments)
	v1.DELETE("/payments/:id", s.ReversePayment)

	v1.GET("/customers", s.ListCustomers)
	v1.GET("/customers/:id", s.GetCustomerByID)

	v1.POST("/recurring/sweep", s.RunRecurringSweep)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
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

var Module = fx.Module("http.server",
	obsmetrics.Module,
	inventory.Module,
	customer.Module,
	invoice.Module,
	payment.Module,
	recurring.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)
