package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"garage-orchestrator/cmd/bootstrap"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/infra/bus"
	"garage-orchestrator/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// connector is implemented by transports that must dial before publishing.
type connector interface {
	Connect(ctx context.Context) error
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Publish device messages as a gate, camera or controller would",
	}
	cmd.AddCommand(simulateEntryCmd())
	cmd.AddCommand(simulateExitCmd())
	cmd.AddCommand(simulateSlotEventCmd())
	cmd.AddCommand(simulateHeartbeatCmd())
	return cmd
}

func simulateEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entry <plate>",
		Short: "Entry camera read a plate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := job.EntryRequest{PlateNumber: args[0], RequestID: uuid.NewString()}
			return publish(cmd, func(t bus.Topics) string { return t.EntryRequest() }, msg)
		},
	}
}

func simulateExitCmd() *cobra.Command {
	var gate string
	cmd := &cobra.Command{
		Use:   "exit <plate>",
		Short: "Exit camera read a plate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := job.ExitRequest{PlateNumber: args[0], RequestID: uuid.NewString(), Gate: gate}
			return publish(cmd, func(t bus.Topics) string { return t.ExitRequest() }, msg)
		},
	}
	cmd.Flags().StringVar(&gate, "gate", "main-exit", "exit gate name")
	return cmd
}

func simulateSlotEventCmd() *cobra.Command {
	var plate string
	cmd := &cobra.Command{
		Use:   "slot-event <slot-id> <OCCUPIED|AVAILABLE>",
		Short: "Slot camera reported a change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := job.SlotEventType(strings.ToUpper(args[1]))
			if typ != job.SlotEventOccupied && typ != job.SlotEventAvailable {
				return errs.Newf("event type must be OCCUPIED or AVAILABLE, got %q", args[1])
			}
			msg := job.SlotEvent{SlotID: args[0], EventType: typ, Timestamp: time.Now().UTC()}
			if plate != "" {
				msg.PlateNumber = &plate
			}
			return publish(cmd, func(t bus.Topics) string { return t.SlotEvent() }, msg)
		},
	}
	cmd.Flags().StringVar(&plate, "plate", "", "plate seen in the slot")
	return cmd
}

func simulateHeartbeatCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "heartbeat <device-id>",
		Short: "Controller reported its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := job.DeviceStatus{DeviceID: args[0], Status: status, LastSeen: time.Now().UTC()}
			return publish(cmd, func(t bus.Topics) string { return t.Heartbeat(args[0]) }, msg)
		},
	}
	cmd.Flags().StringVar(&status, "status", "online", "reported status")
	return cmd
}

func publish(cmd *cobra.Command, topicOf func(bus.Topics) string, msg any) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	transport, err := bootstrap.NewBus(e.cfg, e.logger)
	if err != nil {
		return err
	}
	// closes the shared MQTT connection; a no-op for the SQS consumer
	defer transport.Subscriber.Stop()

	ctx := cmd.Context()
	if c, ok := transport.Publisher.(connector); ok {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return errs.Wrap(err, "encode message")
	}
	topic := topicOf(bus.Topics{Prefix: e.cfg.Bus.TopicPrefix})
	if err := transport.Publisher.Publish(ctx, topic, payload); err != nil {
		return err
	}
	return printPublished(cmd.OutOrStdout(), topic, payload)
}

func printPublished(w io.Writer, topic string, payload []byte) error {
	_, err := fmt.Fprintf(w, "published to %s\n%s\n", topic, payload)
	return err
}

