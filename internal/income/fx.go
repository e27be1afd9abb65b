package income

import (
	"github.com/paperplanehq/agencydesk/internal/income/service"
	"go.uber.org/fx"
)

var Module = fx.Module("income.service",
	fx.Provide(service.NewService),
)
