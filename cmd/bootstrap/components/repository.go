package components

import (
	"agora/internal/infra/cartstore"
	"agora/internal/infra/readstore"
	repo_impl "agora/internal/infra/repository"
	"agora/internal/usecase/commands"
	"agora/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewProductLedgerRepository,
			fx.As(new(commands.ProductLedger)),
		),
		fx.Annotate(
			repo_impl.NewReservationRepository,
			fx.As(new(commands.ReservationStore)),
		),
		fx.Annotate(
			repo_impl.NewOrderRepository,
			fx.As(new(commands.OrderRepository)),
		),
		fx.Annotate(
			cartstore.NewRedisCartStore,
			fx.As(new(commands.CartStore)),
		),
		// Read-side repositories for queries
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		fx.Annotate(
			readstore.NewProductCatalog,
			fx.As(new(commands.ProductCatalog)),
		),
	),
)
