package components

import (
	"log/slog"

	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseSupportModule,
	usecaseGateModule,
	usecaseLifecycleModule,
	usecaseOperatorModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) config.GarageConfig { return cfg.Garage },
)

var usecaseSupportModule = fx.Module("usecase/support",
	fx.Provide(
		usecase.NewAlertService,
		usecase.NewNotifier,
		usecase.NewAllocator,
		NewSessionCloser,
		usecase.NewTokenValidator,
		usecase.NewIngestUseCase,
	),
)

var usecaseGateModule = fx.Module("usecase/gate",
	fx.Provide(
		NewEntryUseCase,
		NewExitUseCase,
		usecase.NewOccupancyUseCase,
		NewDeviceUseCase,
	),
)

var usecaseLifecycleModule = fx.Module("usecase/lifecycle",
	fx.Provide(
		NewLifecycleUseCase,
		NewSettlementUseCase,
		usecase.NewExtensionUseCase,
	),
)

var usecaseOperatorModule = fx.Module("usecase/operator",
	fx.Provide(
		usecase.NewAuthUseCase,
		NewWalkInUseCase,
		usecase.NewWebhookUseCase,
		usecase.NewAdminUseCase,
		usecase.NewProvisionUseCase,
	),
)

func NewSessionCloser(uow shared.UnitOfWork, garage config.GarageConfig, logger *slog.Logger) *usecase.SessionCloser {
	return usecase.NewSessionCloser(uow, usecase.RatesFromConfig(garage), logger)
}

type gateDeps struct {
	fx.In

	UoW       shared.UnitOfWork
	Slots     usecase.SlotStore
	Permits   usecase.PermitStore
	Allocator *usecase.Allocator
	Alerts    *usecase.AlertService
	Publisher usecase.DecisionPublisher
	Metrics   usecase.Metrics
	Clock     clock.Clock
	Config    config.Config
	Logger    *slog.Logger
}

func NewEntryUseCase(d gateDeps) usecase.EntryUseCase {
	return usecase.NewEntryUseCase(d.UoW, d.Slots, d.Permits, d.Allocator, d.Publisher, d.Metrics,
		d.Clock, d.Config.Garage, d.Config.Bus.PublishTimeout, d.Logger)
}

func NewExitUseCase(d gateDeps) usecase.ExitUseCase {
	return usecase.NewExitUseCase(d.UoW, d.Alerts, d.Publisher, d.Metrics, d.Clock, d.Config.Bus.PublishTimeout, d.Logger)
}

func NewDeviceUseCase(uow shared.UnitOfWork, broadcaster usecase.Broadcaster, clk clock.Clock, garage config.GarageConfig, logger *slog.Logger) usecase.DeviceUseCase {
	return usecase.NewDeviceUseCase(uow, broadcaster, clk, garage.DeviceHeartbeatWindow, logger)
}

type lifecycleDeps struct {
	fx.In

	UoW       shared.UnitOfWork
	Slots     usecase.SlotStore
	Scheduler usecase.Scheduler
	Gateway   usecase.PaymentGateway
	Closer    *usecase.SessionCloser
	Alerts    *usecase.AlertService
	Notifier  *usecase.Notifier
	Clock     clock.Clock
	Config    config.Config
	Logger    *slog.Logger
}

func NewLifecycleUseCase(d lifecycleDeps) usecase.LifecycleUseCase {
	return usecase.NewLifecycleUseCase(d.UoW, d.Slots, d.Scheduler, d.Gateway, d.Closer, d.Alerts, d.Notifier,
		d.Clock, d.Config.Garage, d.Config.Payment.CaptureTimeout, d.Logger)
}

func NewSettlementUseCase(d lifecycleDeps) usecase.SettlementUseCase {
	return usecase.NewSettlementUseCase(d.UoW, d.Gateway, d.Alerts, d.Notifier, d.Clock, d.Config.Payment.CaptureTimeout, d.Logger)
}

func NewWalkInUseCase(
	uow shared.UnitOfWork,
	permits usecase.PermitStore,
	gateway usecase.PaymentGateway,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) usecase.WalkInUseCase {
	return usecase.NewWalkInUseCase(uow, permits, gateway, clk, cfg.Garage, cfg.Payment.HoldAmount, logger)
}
