package reservation

import (
	"database/sql"

	"go.uber.org/zap"

	"stockwarden/internal/config"
	"stockwarden/internal/diagnostics"
	"stockwarden/internal/events"
	orderrepo "stockwarden/internal/order/repository"
	"stockwarden/internal/reservation/controller"
	"stockwarden/internal/reservation/lifecycle"
	"stockwarden/internal/reservation/repository"
	storemysql "stockwarden/internal/storage/mysql"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	dispatcher *events.Dispatcher,
	sink diagnostics.Sink,
	logger *zap.Logger,
) *controller.LifecycleController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	reservationRepo := repository.NewMySQLReservationRepository(db)
	store := storemysql.NewStore(db)

	manager := lifecycle.NewManager(
		store,
		orderRepo,
		reservationRepo,
		sink,
		logger,
		cfg.Stock.ReservationTTL,
		cfg.Stock.TxTimeout,
	)
	dispatcher.OnOrderStatusChanged(manager.HandleOrderStatusChanged)

	return controller.NewLifecycleController(dispatcher, logger)
}
