package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bellflight/avr/infra/mqtt"
)

var subCmd = &cobra.Command{
	Use:   "sub [topic filter...]",
	Short: "Print decoded payloads as JSON lines",
	Long:  "Print decoded payloads as JSON lines. Without filters every avr/ topic is shown.",
	RunE:  runSub,
}

func init() {
	rootCmd.AddCommand(subCmd)
}

type subLine struct {
	Time    time.Time `json:"time"`
	Topic   string    `json:"topic"`
	Payload any       `json:"payload"`
}

func runSub(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var mu sync.Mutex
	enc := json.NewEncoder(cmd.OutOrStdout())
	show := mqtt.HandleRaw(func(topic string, payload any) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(subLine{Time: time.Now(), Topic: topic, Payload: payload})
	})

	mqttCfg := cfg.MQTT
	handlers := make(map[string]mqtt.Handler, len(args))
	for _, filter := range args {
		handlers[filter] = show
	}
	if len(args) == 0 {
		mqttCfg.SubscribeAllAVR = true
	}
	module, err := mqtt.New(mqttCfg, handlers, mqtt.WithFallback(show))
	if err != nil {
		return err
	}
	return module.Run(ctx)
}
