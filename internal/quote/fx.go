package quote

import (
	"github.com/smallbiznis/crm/internal/quote/repository"
	"github.com/smallbiznis/crm/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
