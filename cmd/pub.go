package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bellflight/avr/core/payloads"
	"github.com/bellflight/avr/infra/mqtt"
)

var pubCmd = &cobra.Command{
	Use:   "pub <topic> [json]",
	Short: "Publish one payload",
	Long:  "Publish one payload. Registered topics are checked against their payload shape before connecting.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPub,
}

func init() {
	rootCmd.AddCommand(pubCmd)
}

func runPub(cmd *cobra.Command, args []string) error {
	topic := args[0]
	var payload string
	if len(args) > 1 {
		payload = args[1]
	}
	if _, err := payloads.Serialize(topic, payload); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	module, err := mqtt.New(cfg.MQTT, nil)
	if err != nil {
		return err
	}
	if err := module.Start(ctx); err != nil {
		return err
	}
	defer module.Close()
	if err := module.Send(topic, payload); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", topic)
	return nil
}
