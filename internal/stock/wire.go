package stock

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"stockwarden/internal/auth"
	catalogrepo "stockwarden/internal/catalog/repository"
	"stockwarden/internal/config"
	"stockwarden/internal/diagnostics"
	"stockwarden/internal/dto"
	"stockwarden/internal/events"
	orderrepo "stockwarden/internal/order/repository"
	reservationrepo "stockwarden/internal/reservation/repository"
	"stockwarden/internal/stock/controller"
	"stockwarden/internal/stock/service"
	"stockwarden/internal/stock/usecase"
	storemysql "stockwarden/internal/storage/mysql"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	authz auth.Authorizer,
	dispatcher *events.Dispatcher,
	sink diagnostics.Sink,
	logger *zap.Logger,
) *controller.StockController {
	catalogRepo := catalogrepo.NewMySQLCatalogRepository(db)
	reservationRepo := reservationrepo.NewMySQLReservationRepository(db)
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	store := storemysql.NewStore(db)

	calc := service.NewAvailabilityService(catalogRepo, reservationRepo)

	cartUC := usecase.NewCartCheckUseCase(calc, logger)
	clampUC := usecase.NewQuantityClampUseCase(store, orderRepo, sink, logger, cfg.Stock.TxTimeout)
	adminUC := usecase.NewAdminEditUseCase(authz, store, logger, cfg.Stock.TxTimeout, cfg.Stock.MaxRetryAttempts)
	precheckUC := usecase.NewPrecheckUseCase(authz, calc, logger)

	dispatcher.OnItemQuantityRequested(clampUC.SetItemQuantity)
	dispatcher.OnCheckoutSubmitted(func(ctx context.Context, ev events.CheckoutSubmitted) error {
		lines := make([]dto.CartLine, len(ev.Lines))
		for i, l := range ev.Lines {
			lines[i] = dto.CartLine{ProductID: l.ProductID, Quantity: l.Quantity}
		}
		return cartUC.ValidateCheckout(ctx, ev.OrderID, lines)
	})

	return controller.NewStockController(cartUC, adminUC, precheckUC, dispatcher, logger)
}
