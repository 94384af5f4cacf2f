package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bellflight/avr/app/recorder"
	"github.com/bellflight/avr/config"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record avr/ telemetry to InfluxDB",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runService("recorder", func(cfg *config.Config) (service, error) {
			return recorder.New(cfg)
		})
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
}
