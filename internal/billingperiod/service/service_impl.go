package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	billingperioddomain "github.com/paperplanehq/agencydesk/internal/billingperiod/domain"
	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
	incomedomain "github.com/paperplanehq/agencydesk/internal/income/domain"
	invoicedomain "github.com/paperplanehq/agencydesk/internal/invoice/domain"
	"github.com/paperplanehq/agencydesk/internal/observability/metrics"
	"github.com/paperplanehq/agencydesk/pkg/db"
	"github.com/paperplanehq/agencydesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Metrics *metrics.Metrics `optional:"true"`

	HorizonPeriods int `name:"projection_horizon_periods" optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID          *snowflake.Node
	metrics        *metrics.Metrics
	horizonPeriods int

	servicerepo repository.Repository[catalogdomain.Service]
	periodrepo  repository.Repository[billingperioddomain.BillingPeriod]
	invoicerepo repository.Repository[invoicedomain.Invoice]
	linerepo    repository.Repository[invoicedomain.InvoiceLine]
	incomerepo  repository.Repository[incomedomain.Income]
}

func NewService(p ServiceParam) billingperioddomain.Service {
	horizon := p.HorizonPeriods
	if horizon <= 0 {
		horizon = 3
	}
	return &Service{
		db:  p.DB,
		log: p.Log.Named("billingperiod.service"),

		genID:          p.GenID,
		metrics:        p.Metrics,
		horizonPeriods: horizon,

		servicerepo: repository.ProvideStore[catalogdomain.Service](p.DB),
		periodrepo:  repository.ProvideStore[billingperioddomain.BillingPeriod](p.DB),
		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
		linerepo:    repository.ProvideStore[invoicedomain.InvoiceLine](p.DB),
		incomerepo:  repository.ProvideStore[incomedomain.Income](p.DB),
	}
}

func (s *Service) Materialize(ctx context.Context, serviceID snowflake.ID, asOf time.Time) (billingperioddomain.MaterializeResult, error) {
	result := billingperioddomain.MaterializeResult{ServiceID: serviceID}

	svc, err := s.servicerepo.FindOne(ctx, &catalogdomain.Service{ID: serviceID})
	if err != nil {
		return result, err
	}
	if svc == nil {
		return result, billingperioddomain.ErrServiceNotFound
	}

	if s.metrics != nil {
		s.metrics.MaterializeRuns.Inc()
	}

	ranges, err := s.missingRanges(ctx, svc, asOf)
	if err != nil {
		return result, err
	}

	for _, r := range ranges {
		created, err := s.createIfAbsent(ctx, svc, r)
		switch {
		case err != nil:
			// One bad range must not abort the rest of the batch.
			result.Failed++
			s.recordOutcome(metrics.OutcomeFailed)
			s.log.Error("materialize period failed",
				zap.String("service_id", serviceID.String()),
				zap.Time("date_from", r.DateFrom),
				zap.Time("date_to", r.DateTo),
				zap.Error(err),
			)
		case created:
			result.Created++
			s.recordOutcome(metrics.OutcomeCreated)
		default:
			result.Existing++
			s.recordOutcome(metrics.OutcomeExists)
		}
	}

	return result, nil
}

func (s *Service) MaterializeActive(ctx context.Context, asOf time.Time) ([]billingperioddomain.MaterializeResult, error) {
	services, err := s.servicerepo.Find(ctx, &catalogdomain.Service{Status: catalogdomain.ServiceStatusActive})
	if err != nil {
		return nil, err
	}

	results := make([]billingperioddomain.MaterializeResult, 0, len(services))
	for _, svc := range services {
		result, err := s.Materialize(ctx, svc.ID, asOf)
		if err != nil {
			// Misconfigured services are skipped, the batch continues.
			s.log.Warn("skipping service during materialization",
				zap.String("service_id", svc.ID.String()),
				zap.Error(err),
			)
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *Service) Remove(ctx context.Context, periodID snowflake.ID) error {
	period, err := s.periodrepo.FindOne(ctx, &billingperioddomain.BillingPeriod{ID: periodID})
	if err != nil {
		return err
	}
	if period == nil {
		return billingperioddomain.ErrPeriodNotFound
	}

	attached, err := s.hasAttachments(ctx, periodID)
	if err != nil {
		return err
	}
	if attached {
		return billingperioddomain.ErrPeriodInUse
	}

	return s.periodrepo.Delete(ctx, periodID.String())
}

// missingRanges projects the service calendar bounded to asOf plus the
// configured horizon and drops ranges already persisted.
func (s *Service) missingRanges(ctx context.Context, svc *catalogdomain.Service, asOf time.Time) ([]billingperioddomain.PeriodRange, error) {
	persisted, err := s.periodrepo.Find(ctx, &billingperioddomain.BillingPeriod{ServiceID: svc.ID})
	if err != nil {
		return nil, err
	}

	existing := make([]billingperioddomain.PeriodRange, 0, len(persisted))
	for _, p := range persisted {
		existing = append(existing, p.Range())
	}

	horizon := billingperioddomain.NormalizeDate(asOf)
	if months := svc.Cadence.Months(); months > 0 {
		horizon = horizon.AddDate(0, months*s.horizonPeriods, 0)
	}

	return billingperioddomain.Project(svc.StartDate, svc.Cadence, svc.EndDate, horizon, existing)
}

// createIfAbsent inserts one billing period, treating a natural-key
// collision as "already exists". Losing the race costs nothing: the winner's
// row has identical content.
func (s *Service) createIfAbsent(ctx context.Context, svc *catalogdomain.Service, r billingperioddomain.PeriodRange) (bool, error) {
	period := &billingperioddomain.BillingPeriod{
		ID:        s.genID.Generate(),
		ServiceID: svc.ID,
		DateFrom:  r.DateFrom,
		DateTo:    r.DateTo,
		Kind:      billingperioddomain.KindStandard,
	}

	err := s.periodrepo.Create(ctx, period)
	if err == nil {
		return true, nil
	}
	if db.IsDuplicateKeyErr(err) {
		return false, nil
	}
	return false, err
}

func (s *Service) hasAttachments(ctx context.Context, periodID snowflake.ID) (bool, error) {
	if n, err := s.invoicerepo.Count(ctx, &invoicedomain.Invoice{PeriodID: &periodID}); err != nil || n > 0 {
		return n > 0, err
	}
	if n, err := s.linerepo.Count(ctx, &invoicedomain.InvoiceLine{PeriodID: periodID}); err != nil || n > 0 {
		return n > 0, err
	}
	n, err := s.incomerepo.Count(ctx, &incomedomain.Income{PeriodID: &periodID})
	return n > 0, err
}

func (s *Service) recordOutcome(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.PeriodsMaterialized.WithLabelValues(outcome).Inc()
}
