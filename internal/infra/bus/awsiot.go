package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const sqsRetryDelay = 5 * time.Second

// LoadAWSConfig resolves credentials from the default chain.
func LoadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, errs.Wrap(err, "load aws config")
	}
	return awsCfg, nil
}

// sqsEnvelope is the part of the message an IoT rule adds to the device payload.
type sqsEnvelope struct {
	Topic string `json:"received_mqtt_topic"`
}

// SQSConsumer long-polls the queue an IoT topic rule forwards device messages
// to. Messages are deleted once handled; a failed message reappears after the
// visibility timeout.
type SQSConsumer struct {
	client   *sqs.Client
	queueURL string
	wait     int32
	visible  int32
	logger   *slog.Logger

	cancel context.CancelFunc
	done   sync.WaitGroup
}

func NewSQSConsumer(client *sqs.Client, cfg config.AWSConfig, logger *slog.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:   client,
		queueURL: cfg.SQSEventQueueURL,
		wait:     cfg.SQSWaitSecs,
		visible:  cfg.SQSVisibilitySecs,
		logger:   logger,
	}
}

func (c *SQSConsumer) Start(ctx context.Context, h Handler) error {
	if c.queueURL == "" {
		return errs.New("sqs event queue url is not configured")
	}
	ctx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	c.done.Add(1)
	go func() {
		defer c.done.Done()
		c.poll(ctx, h)
	}()
	c.logger.Info("sqs consumer started", slog.String("queue_url", c.queueURL))
	return nil
}

func (c *SQSConsumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.done.Wait()
}

func (c *SQSConsumer) poll(ctx context.Context, h Handler) {
	for {
		if ctx.Err() != nil {
			return
		}
		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     c.wait,
			VisibilityTimeout:   c.visible,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("sqs receive failed", slog.String("error", err.Error()))
			select {
			case <-time.After(sqsRetryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, msg := range out.Messages {
			if msg.Body == nil {
				c.delete(ctx, msg.ReceiptHandle)
				continue
			}
			var env sqsEnvelope
			if err := json.Unmarshal([]byte(*msg.Body), &env); err != nil || env.Topic == "" {
				c.logger.Warn("sqs message without topic dropped", slog.String("message_id", aws.ToString(msg.MessageId)))
				c.delete(ctx, msg.ReceiptHandle)
				continue
			}
			if err := h(ctx, env.Topic, []byte(*msg.Body)); err != nil {
				c.logger.Error("sqs message left for redelivery",
					slog.String("message_id", aws.ToString(msg.MessageId)), slog.String("error", err.Error()))
				continue
			}
			c.delete(ctx, msg.ReceiptHandle)
		}
	}
}

func (c *SQSConsumer) delete(ctx context.Context, receipt *string) {
	if receipt == nil {
		return
	}
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receipt,
	})
	if err != nil {
		c.logger.Error("sqs delete failed", slog.String("error", err.Error()))
	}
}

// IoTPublisher publishes through the AWS IoT data plane.
type IoTPublisher struct {
	client *iotdataplane.Client
	qos    int32
}

func NewIoTPublisher(awsCfg aws.Config, cfg config.AWSConfig, bus config.BusConfig) *IoTPublisher {
	client := iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
		if cfg.IoTDataEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.IoTDataEndpoint)
		}
	})
	return &IoTPublisher{client: client, qos: int32(bus.QoS)}
}

func (p *IoTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	_, err := p.client.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     p.qos,
		Payload: payload,
	})
	if err != nil {
		return errs.Wrap(err, "publish to "+topic)
	}
	return nil
}
