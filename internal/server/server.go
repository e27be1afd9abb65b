// Package server wires the gin HTTP surface over the billing engine.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/paperplanehq/agencydesk/internal/authorization"
	"github.com/paperplanehq/agencydesk/internal/billingperiod"
	billingperioddomain "github.com/paperplanehq/agencydesk/internal/billingperiod/domain"
	"github.com/paperplanehq/agencydesk/internal/clock"
	"github.com/paperplanehq/agencydesk/internal/commission"
	commissiondomain "github.com/paperplanehq/agencydesk/internal/commission/domain"
	"github.com/paperplanehq/agencydesk/internal/config"
	"github.com/paperplanehq/agencydesk/internal/income"
	incomedomain "github.com/paperplanehq/agencydesk/internal/income/domain"
	"github.com/paperplanehq/agencydesk/internal/observability"
	obslogger "github.com/paperplanehq/agencydesk/internal/observability/logger"
	obsmetrics "github.com/paperplanehq/agencydesk/internal/observability/metrics"
	"github.com/paperplanehq/agencydesk/internal/reconciliation"
	recondomain "github.com/paperplanehq/agencydesk/internal/reconciliation/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	billingperiod.Module,
	reconciliation.Module,
	commission.Module,
	income.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, m *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(obsCfg, m)
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
	db     *gorm.DB
	genID  *snowflake.Node
	clock  clock.Clock
	loc    *time.Location

	authzSvc      authorization.Service
	periodSvc     billingperioddomain.Service
	reconSvc      recondomain.Service
	commissionSvc commissiondomain.Service
	incomeSvc     incomedomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	Clock         clock.Clock
	AuthzSvc      authorization.Service
	PeriodSvc     billingperioddomain.Service
	ReconSvc      recondomain.Service
	CommissionSvc commissiondomain.Service
	IncomeSvc     incomedomain.Service
}

func NewServer(p ServerParams) *Server {
	loc, err := time.LoadLocation(p.Cfg.ReportTimeZone)
	if err != nil {
		loc = time.UTC
	}

	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		db:     p.DB,
		genID:  p.GenID,
		clock:  p.Clock,
		loc:    loc,

		authzSvc:      p.AuthzSvc,
		periodSvc:     p.PeriodSvc,
		reconSvc:      p.ReconSvc,
		commissionSvc: p.CommissionSvc,
		incomeSvc:     p.IncomeSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// asOf is the reference calendar date for every "is in the past" check,
// taken in the configured report zone and anchored at UTC midnight.
func (s *Server) asOf() time.Time {
	return billingperioddomain.NormalizeDateIn(s.clock.Now(), s.loc)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Reconciliation --------
	api.GET("/reconciliation", s.GetReconciliationView)
	api.GET("/reconciliation/plan-fact", s.GetPlanFact)

	// -------- Billing periods --------
	api.POST("/periods/materialize", s.MaterializeActivePeriods)
	api.POST("/services/:id/periods/materialize", s.MaterializeServicePeriods)
	api.DELETE("/periods/:id", s.DeletePeriod)

	// -------- Commission --------
	api.GET("/agents/:id/earnings", s.GetAgentEarnings)

	// -------- Incomes --------
	api.GET("/incomes", s.ListIncomes)
	api.POST("/incomes", s.RecordIncome)
}
