package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/authorization"
	billingperioddomain "github.com/paperplanehq/agencydesk/internal/billingperiod/domain"
	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
	"github.com/paperplanehq/agencydesk/internal/income/domain"
	"github.com/paperplanehq/agencydesk/pkg/db/option"
	"github.com/paperplanehq/agencydesk/pkg/db/pagination"
	"github.com/paperplanehq/agencydesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPageSize = 50

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Authz authorization.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	authz authorization.Service

	incomerepo repository.Repository[domain.Income]
	clientrepo repository.Repository[catalogdomain.Client]
	svcrepo    repository.Repository[catalogdomain.Service]
	periodrepo repository.Repository[billingperioddomain.BillingPeriod]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("income.service"),
		genID: p.GenID,
		authz: p.Authz,

		incomerepo: repository.ProvideStore[domain.Income](p.DB),
		clientrepo: repository.ProvideStore[catalogdomain.Client](p.DB),
		svcrepo:    repository.ProvideStore[catalogdomain.Service](p.DB),
		periodrepo: repository.ProvideStore[billingperioddomain.BillingPeriod](p.DB),
	}
}

func (s *Service) List(ctx context.Context, actor string, req domain.ListRequest) (*domain.ListResponse, error) {
	scope, err := s.authz.ResolveScope(ctx, actor, authorization.ObjectIncome)
	if err != nil {
		return nil, err
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}

	opts := []option.QueryOption{
		option.WithOrder("id DESC"),
		option.WithLimit(limit + 1),
	}
	if !scope.All {
		owned, err := s.clientrepo.Find(ctx, &catalogdomain.Client{OwnerUserID: scope.OwnerUserID})
		if err != nil {
			return nil, err
		}
		if len(owned) == 0 {
			return &domain.ListResponse{Data: []*domain.Income{}, PageInfo: &pagination.PageInfo{}}, nil
		}
		ids := make([]snowflake.ID, 0, len(owned))
		for _, c := range owned {
			ids = append(ids, c.ID)
		}
		opts = append(opts, option.WithWhere("client_id IN ?", ids))
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, domain.ErrInvalidIncome
		}
		opts = append(opts, option.WithWhere("id < ?", cursor.ID))
	}

	query := &domain.Income{}
	if req.ClientID != nil {
		query.ClientID = *req.ClientID
	}
	if req.ServiceID != nil {
		query.ServiceID = *req.ServiceID
	}
	if req.PeriodID != nil {
		query.PeriodID = req.PeriodID
	}

	incomes, err := s.incomerepo.Find(ctx, query, opts...)
	if err != nil {
		return nil, err
	}

	pageInfo, incomes := pagination.BuildCursorPageInfo(incomes, limit, func(inc *domain.Income) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: inc.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	return &domain.ListResponse{Data: incomes, PageInfo: pageInfo}, nil
}

func (s *Service) Record(ctx context.Context, actor string, req domain.RecordRequest) (*domain.Income, error) {
	if err := s.authz.Authorize(ctx, actor, authorization.ObjectIncome, authorization.ActionRecord); err != nil {
		return nil, err
	}
	if req.ClientID == 0 || req.ServiceID == 0 || !req.Amount.IsPositive() || req.ReceivedAt.IsZero() {
		return nil, domain.ErrInvalidIncome
	}

	svc, err := s.svcrepo.FindOne(ctx, &catalogdomain.Service{ID: req.ServiceID})
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, billingperioddomain.ErrServiceNotFound
	}
	if svc.ClientID != req.ClientID {
		return nil, domain.ErrServiceMismatch
	}

	if req.PeriodID != nil {
		period, err := s.periodrepo.FindOne(ctx, &billingperioddomain.BillingPeriod{ID: *req.PeriodID})
		if err != nil {
			return nil, err
		}
		if period == nil {
			return nil, billingperioddomain.ErrPeriodNotFound
		}
		if period.ServiceID != req.ServiceID {
			return nil, domain.ErrPeriodMismatch
		}
	}

	income := &domain.Income{
		ID:         s.genID.Generate(),
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
		PeriodID:   req.PeriodID,
		Amount:     req.Amount,
		ReceivedAt: billingperioddomain.NormalizeDate(req.ReceivedAt),
		Comment:    req.Comment,
	}
	if err := s.incomerepo.Create(ctx, income); err != nil {
		return nil, err
	}

	s.log.Info("income recorded",
		zap.String("income_id", income.ID.String()),
		zap.String("service_id", income.ServiceID.String()),
		zap.Int64("amount", int64(income.Amount)),
	)
	return income, nil
}
