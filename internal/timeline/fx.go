package timeline

import (
	"github.com/smallbiznis/crm/internal/timeline/service"
	"go.uber.org/fx"
)

var Module = fx.Module("timeline.service",
	fx.Provide(service.New),
)
