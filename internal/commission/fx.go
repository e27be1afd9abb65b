package commission

import (
	"github.com/paperplanehq/agencydesk/internal/cache"
	"github.com/paperplanehq/agencydesk/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(cache.NewProductCache),
	fx.Provide(service.NewService),
)
