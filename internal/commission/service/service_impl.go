package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/authorization"
	"github.com/paperplanehq/agencydesk/internal/cache"
	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
	"github.com/paperplanehq/agencydesk/internal/commission/domain"
	"github.com/paperplanehq/agencydesk/internal/money"
	recondomain "github.com/paperplanehq/agencydesk/internal/reconciliation/domain"
	"github.com/paperplanehq/agencydesk/pkg/db/option"
	"github.com/paperplanehq/agencydesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Authz    authorization.Service
	Recon    recondomain.Service
	Products cache.ProductCache
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	authz    authorization.Service
	recon    recondomain.Service
	products cache.ProductCache

	agentrepo   repository.Repository[domain.Agent]
	clientrepo  repository.Repository[catalogdomain.Client]
	svcrepo     repository.Repository[catalogdomain.Service]
	productrepo repository.Repository[catalogdomain.Product]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("commission.service"),
		authz:    p.Authz,
		recon:    p.Recon,
		products: p.Products,

		agentrepo:   repository.ProvideStore[domain.Agent](p.DB),
		clientrepo:  repository.ProvideStore[catalogdomain.Client](p.DB),
		svcrepo:     repository.ProvideStore[catalogdomain.Service](p.DB),
		productrepo: repository.ProvideStore[catalogdomain.Product](p.DB),
	}
}

func (s *Service) ComputeEarnings(ctx context.Context, actor string, agentID snowflake.ID, from, to time.Time, asOf time.Time) (domain.EarningsReport, error) {
	scope, err := s.authz.ResolveScope(ctx, actor, authorization.ObjectCommission)
	if err != nil {
		return domain.EarningsReport{}, err
	}

	agent, err := s.agentrepo.FindOne(ctx, &domain.Agent{ID: agentID})
	if err != nil {
		return domain.EarningsReport{}, err
	}
	if agent == nil {
		return domain.EarningsReport{}, domain.ErrAgentNotFound
	}

	query := &catalogdomain.Client{AgentID: &agentID}
	if !scope.All {
		query.OwnerUserID = scope.OwnerUserID
	}
	clients, err := s.clientrepo.Find(ctx, query)
	if err != nil {
		return domain.EarningsReport{}, err
	}

	report := domain.EarningsReport{
		AgentID:   agent.ID,
		AgentName: agent.Name,
		OnTop:     agent.CommissionOnTop,
		From:      from,
		To:        to,
		Clients:   make([]domain.ClientEarnings, 0, len(clients)),
	}
	if len(clients) == 0 {
		return report, nil
	}

	percentBySvc, err := s.servicePercents(ctx, agent, clients)
	if err != nil {
		return domain.EarningsReport{}, err
	}

	// Commission follows the payment schedule, not the service calendar:
	// a period counts in the window its payment falls due.
	view, err := s.recon.BuildView(ctx, actor, recondomain.Filter{
		From:         from,
		To:           to,
		ByPaymentDue: true,
	}, asOf)
	if err != nil {
		return domain.EarningsReport{}, err
	}

	earnings := make(map[snowflake.ID]*domain.ClientEarnings, len(clients))
	for _, client := range clients {
		earnings[client.ID] = &domain.ClientEarnings{
			ClientID:   client.ID,
			ClientName: client.Name,
		}
	}

	for _, row := range view.Rows {
		ce := earnings[row.ClientID]
		if ce == nil {
			continue
		}
		bp, ok := percentBySvc[row.ServiceID]
		if !ok || bp <= 0 {
			continue
		}
		pct := money.PercentFromBasisPoints(bp)
		ce.ExpectedCommission = ce.ExpectedCommission.Add(row.ExpectedAmount.MulPercent(pct))
		ce.PaidCommission = ce.PaidCommission.Add(row.CollectedAmount.MulPercent(pct))
	}

	for _, client := range clients {
		ce := earnings[client.ID]
		report.Clients = append(report.Clients, *ce)
		report.ExpectedTotal = report.ExpectedTotal.Add(ce.ExpectedCommission)
		report.PaidTotal = report.PaidTotal.Add(ce.PaidCommission)
	}
	sort.Slice(report.Clients, func(i, j int) bool {
		if report.Clients[i].ClientName != report.Clients[j].ClientName {
			return report.Clients[i].ClientName < report.Clients[j].ClientName
		}
		return report.Clients[i].ClientID < report.Clients[j].ClientID
	})

	return report, nil
}

// servicePercents resolves the effective commission rate per sold service:
// the agent's personal rate when it replaces the product rate, otherwise the
// product's standard partner rate.
func (s *Service) servicePercents(ctx context.Context, agent *domain.Agent, clients []*catalogdomain.Client) (map[snowflake.ID]int64, error) {
	clientIDs := make([]snowflake.ID, 0, len(clients))
	for _, c := range clients {
		clientIDs = append(clientIDs, c.ID)
	}

	services, err := s.svcrepo.Find(ctx, &catalogdomain.Service{},
		option.WithWhere("client_id IN ?", clientIDs),
	)
	if err != nil {
		return nil, err
	}

	percents := make(map[snowflake.ID]int64, len(services))
	for _, svc := range services {
		if agent.CommissionInOurAmount {
			percents[svc.ID] = agent.DesiredPercentBP
			continue
		}
		product, err := s.product(ctx, svc.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			percents[svc.ID] = 0
			continue
		}
		percents[svc.ID] = product.PartnerPercentBP
	}
	return percents, nil
}

func (s *Service) product(ctx context.Context, id snowflake.ID) (*catalogdomain.Product, error) {
	if product, ok := s.products.Get(id); ok {
		return product, nil
	}
	product, err := s.productrepo.FindOne(ctx, &catalogdomain.Product{ID: id})
	if err != nil {
		return nil, err
	}
	s.products.Set(product)
	return product, nil
}
