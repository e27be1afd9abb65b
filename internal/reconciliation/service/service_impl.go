package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/authorization"
	billingperioddomain "github.com/paperplanehq/agencydesk/internal/billingperiod/domain"
	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
	incomedomain "github.com/paperplanehq/agencydesk/internal/income/domain"
	invoicedomain "github.com/paperplanehq/agencydesk/internal/invoice/domain"
	"github.com/paperplanehq/agencydesk/internal/money"
	"github.com/paperplanehq/agencydesk/internal/observability/metrics"
	"github.com/paperplanehq/agencydesk/internal/reconciliation/domain"
	"github.com/paperplanehq/agencydesk/pkg/db/option"
	"github.com/paperplanehq/agencydesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Authz   authorization.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	authz   authorization.Service
	metrics *metrics.Metrics

	clientrepo  repository.Repository[catalogdomain.Client]
	svcrepo     repository.Repository[catalogdomain.Service]
	periodrepo  repository.Repository[billingperioddomain.BillingPeriod]
	reportrepo  repository.Repository[billingperioddomain.PeriodReport]
	invoicerepo repository.Repository[invoicedomain.Invoice]
	linerepo    repository.Repository[invoicedomain.InvoiceLine]
	incomerepo  repository.Repository[incomedomain.Income]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("reconciliation.service"),
		authz:   p.Authz,
		metrics: p.Metrics,

		clientrepo:  repository.ProvideStore[catalogdomain.Client](p.DB),
		svcrepo:     repository.ProvideStore[catalogdomain.Service](p.DB),
		periodrepo:  repository.ProvideStore[billingperioddomain.BillingPeriod](p.DB),
		reportrepo:  repository.ProvideStore[billingperioddomain.PeriodReport](p.DB),
		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
		linerepo:    repository.ProvideStore[invoicedomain.InvoiceLine](p.DB),
		incomerepo:  repository.ProvideStore[incomedomain.Income](p.DB),
	}
}

func (s *Service) BuildView(ctx context.Context, actor string, filter domain.Filter, asOf time.Time) (domain.View, error) {
	rows, err := s.buildRows(ctx, actor, filter, asOf)
	if err != nil {
		return domain.View{}, err
	}

	if s.metrics != nil {
		s.metrics.ReportBuilds.Inc()
		s.metrics.ReportRows.Observe(float64(len(rows)))
	}

	return domain.View{
		Rows:     rows,
		PlanFact: aggregate(rows),
		AsOf:     billingperioddomain.NormalizeDate(asOf),
	}, nil
}

func (s *Service) AggregatePlanFact(ctx context.Context, actor string, filter domain.Filter, asOf time.Time) (domain.PlanFact, error) {
	rows, err := s.buildRows(ctx, actor, filter, asOf)
	if err != nil {
		return domain.PlanFact{}, err
	}
	return aggregate(rows), nil
}

func aggregate(rows []domain.Row) domain.PlanFact {
	var pf domain.PlanFact
	for _, row := range rows {
		pf.PlanTotal = pf.PlanTotal.Add(row.ExpectedAmount)
		pf.FactTotal = pf.FactTotal.Add(row.CollectedAmount)
	}
	pf.Deviation = pf.PlanTotal.Sub(pf.FactTotal)
	return pf
}

func (s *Service) buildRows(ctx context.Context, actor string, filter domain.Filter, asOf time.Time) ([]domain.Row, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.From = billingperioddomain.NormalizeDate(filter.From)
	filter.To = billingperioddomain.NormalizeDate(filter.To)
	asOf = billingperioddomain.NormalizeDate(asOf)

	clients, err := s.scopedClients(ctx, actor, filter.ClientID)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return []domain.Row{}, nil
	}

	clientByID := make(map[snowflake.ID]*catalogdomain.Client, len(clients))
	clientIDs := make([]snowflake.ID, 0, len(clients))
	for _, c := range clients {
		clientByID[c.ID] = c
		clientIDs = append(clientIDs, c.ID)
	}

	services, err := s.svcrepo.Find(ctx, &catalogdomain.Service{},
		option.WithWhere("client_id IN ?", clientIDs),
		option.WithWhere("status <> ?", catalogdomain.ServiceStatusDraft),
	)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return []domain.Row{}, nil
	}

	serviceIDs := make([]snowflake.ID, 0, len(services))
	for _, svc := range services {
		serviceIDs = append(serviceIDs, svc.ID)
	}

	periodsBySvc, periodIDs, err := s.loadPeriods(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	collected, err := s.loadCollected(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	invoiced, err := s.loadInvoiced(ctx, serviceIDs, periodIDs)
	if err != nil {
		return nil, err
	}
	reported, err := s.loadReported(ctx, periodIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Row, 0, len(periodIDs))
	for _, svc := range services {
		client := clientByID[svc.ClientID]
		if client == nil {
			continue
		}

		persisted := periodsBySvc[svc.ID]
		existing := make([]billingperioddomain.PeriodRange, 0, len(persisted))
		for _, p := range persisted {
			existing = append(existing, p.Range())

			row := domain.Row{
				PeriodID:           &p.ID,
				ClientID:           client.ID,
				ClientName:         client.Name,
				ServiceID:          svc.ID,
				ServiceName:        svc.Name,
				DateFrom:           billingperioddomain.NormalizeDate(p.DateFrom),
				DateTo:             billingperioddomain.NormalizeDate(p.DateTo),
				Kind:               p.Kind,
				ExpectedAmount:     p.ExpectedAmount(svc.ExpectedAmount()),
				CollectedAmount:    collected[p.ID],
				HasInvoice:         invoiced[p.ID],
				HasReport:          reported[p.ID],
				InvoiceNotRequired: p.InvoiceNotRequired,
			}
			finishRow(&row, svc.PrepayPolicy, asOf)
			if selectRow(row, filter) {
				rows = append(rows, row)
			}
		}

		// Virtual tail: the calendar the materializer has not persisted yet,
		// bounded by the window itself.
		projected, err := billingperioddomain.Project(svc.StartDate, svc.Cadence, svc.EndDate, filter.To, existing)
		if err != nil {
			s.log.Warn("skipping service in reconciliation view",
				zap.String("service_id", svc.ID.String()),
				zap.Error(err),
			)
			continue
		}
		for _, r := range projected {
			row := domain.Row{
				ClientID:       client.ID,
				ClientName:     client.Name,
				ServiceID:      svc.ID,
				ServiceName:    svc.Name,
				DateFrom:       r.DateFrom,
				DateTo:         r.DateTo,
				Kind:           billingperioddomain.KindStandard,
				ExpectedAmount: svc.ExpectedAmount(),
				IsVirtual:      true,
			}
			finishRow(&row, svc.PrepayPolicy, asOf)
			if selectRow(row, filter) {
				rows = append(rows, row)
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].DateTo.Equal(rows[j].DateTo) {
			return rows[i].DateTo.Before(rows[j].DateTo)
		}
		if !rows[i].DateFrom.Equal(rows[j].DateFrom) {
			return rows[i].DateFrom.Before(rows[j].DateFrom)
		}
		return rows[i].ServiceID < rows[j].ServiceID
	})

	return rows, nil
}

// finishRow derives the due date, balance and status flags shared by
// persisted and virtual rows.
func finishRow(row *domain.Row, policy catalogdomain.PrepaymentPolicy, asOf time.Time) {
	if policy.DueAtStart() {
		row.PaymentDueDate = row.DateFrom
	} else {
		row.PaymentDueDate = row.DateTo
	}

	row.Balance = row.ExpectedAmount.Sub(row.CollectedAmount)
	row.IsOverdue = !row.HasReport && row.DateTo.Before(asOf)
	row.IsPaymentOverdue = row.PaymentDueDate.Before(asOf) && row.Balance.IsPositive()
	row.IsRisk = row.IsOverdue || (!row.HasReport && row.HasInvoice && !row.DateTo.Before(asOf))
}

func selectRow(row domain.Row, filter domain.Filter) bool {
	if filter.ByPaymentDue {
		return filter.Contains(row.PaymentDueDate)
	}
	return billingperioddomain.PeriodRange{DateFrom: row.DateFrom, DateTo: row.DateTo}.
		Intersects(filter.From, filter.To)
}

func (s *Service) scopedClients(ctx context.Context, actor string, clientID *snowflake.ID) ([]*catalogdomain.Client, error) {
	scope, err := s.authz.ResolveScope(ctx, actor, authorization.ObjectReconciliation)
	if err != nil {
		return nil, err
	}

	if clientID != nil {
		client, err := s.clientrepo.FindOne(ctx, &catalogdomain.Client{ID: *clientID})
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, domain.ErrClientNotFound
		}
		if !scope.All && client.OwnerUserID != scope.OwnerUserID {
			return nil, authorization.ErrForbidden
		}
		return []*catalogdomain.Client{client}, nil
	}

	if scope.All {
		return s.clientrepo.Find(ctx, &catalogdomain.Client{})
	}
	return s.clientrepo.Find(ctx, &catalogdomain.Client{OwnerUserID: scope.OwnerUserID})
}

func (s *Service) loadPeriods(ctx context.Context, serviceIDs []snowflake.ID) (map[snowflake.ID][]*billingperioddomain.BillingPeriod, []snowflake.ID, error) {
	periods, err := s.periodrepo.Find(ctx, &billingperioddomain.BillingPeriod{},
		option.WithWhere("service_id IN ?", serviceIDs),
		option.WithOrder("date_from ASC"),
	)
	if err != nil {
		return nil, nil, err
	}

	bySvc := make(map[snowflake.ID][]*billingperioddomain.BillingPeriod)
	ids := make([]snowflake.ID, 0, len(periods))
	for _, p := range periods {
		bySvc[p.ServiceID] = append(bySvc[p.ServiceID], p)
		ids = append(ids, p.ID)
	}
	return bySvc, ids, nil
}

func (s *Service) loadCollected(ctx context.Context, serviceIDs []snowflake.ID) (map[snowflake.ID]money.Money, error) {
	incomes, err := s.incomerepo.Find(ctx, &incomedomain.Income{},
		option.WithWhere("service_id IN ?", serviceIDs),
	)
	if err != nil {
		return nil, err
	}

	collected := make(map[snowflake.ID]money.Money)
	for _, inc := range incomes {
		if inc.PeriodID == nil {
			continue
		}
		collected[*inc.PeriodID] = collected[*inc.PeriodID].Add(inc.Amount)
	}
	return collected, nil
}

func (s *Service) loadInvoiced(ctx context.Context, serviceIDs, periodIDs []snowflake.ID) (map[snowflake.ID]bool, error) {
	invoiced := make(map[snowflake.ID]bool)

	invoices, err := s.invoicerepo.Find(ctx, &invoicedomain.Invoice{},
		option.WithWhere("service_id IN ?", serviceIDs),
		option.WithWhere("status <> ?", invoicedomain.InvoiceStatusVoid),
	)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if inv.PeriodID != nil {
			invoiced[*inv.PeriodID] = true
		}
	}

	if len(periodIDs) == 0 {
		return invoiced, nil
	}
	lines, err := s.linerepo.Find(ctx, &invoicedomain.InvoiceLine{},
		option.WithWhere("period_id IN ?", periodIDs),
	)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		invoiced[line.PeriodID] = true
	}
	return invoiced, nil
}

func (s *Service) loadReported(ctx context.Context, periodIDs []snowflake.ID) (map[snowflake.ID]bool, error) {
	reported := make(map[snowflake.ID]bool)
	if len(periodIDs) == 0 {
		return reported, nil
	}

	reports, err := s.reportrepo.Find(ctx, &billingperioddomain.PeriodReport{},
		option.WithWhere("period_id IN ?", periodIDs),
	)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		reported[r.PeriodID] = true
	}
	return reported, nil
}
