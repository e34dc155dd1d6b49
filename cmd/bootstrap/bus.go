package bootstrap

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/infra/bus"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/fx"
)

const (
	DriverMQTT   = "mqtt"
	DriverAWSIoT = "awsiot"
)

var BusModule = fx.Module("bus",
	fx.Provide(
		NewBus,
		func(cfg config.Config) bus.Topics {
			return bus.Topics{Prefix: cfg.Bus.TopicPrefix}
		},
	),
)

type BusResult struct {
	fx.Out

	Publisher  bus.Publisher
	Subscriber bus.Subscriber
}

// NewBus picks the device transport. The AWS driver consumes the SQS queue an
// IoT rule feeds and publishes through the IoT data plane.
func NewBus(cfg config.Config, logger *slog.Logger) (BusResult, error) {
	switch cfg.Bus.Driver {
	case DriverMQTT:
		m := bus.NewMQTT(cfg.Bus, logger)
		return BusResult{Publisher: m, Subscriber: m}, nil
	case DriverAWSIoT:
		awsCfg, err := bus.LoadAWSConfig(context.Background(), cfg.AWS)
		if err != nil {
			return BusResult{}, err
		}
		return BusResult{
			Publisher:  bus.NewIoTPublisher(awsCfg, cfg.AWS, cfg.Bus),
			Subscriber: bus.NewSQSConsumer(sqs.NewFromConfig(awsCfg), cfg.AWS, logger),
		}, nil
	default:
		return BusResult{}, errs.Newf("unknown BUS_DRIVER %q", cfg.Bus.Driver)
	}
}
