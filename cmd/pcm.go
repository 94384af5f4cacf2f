package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bellflight/avr/app/pcm"
	"github.com/bellflight/avr/config"
)

var pcmCmd = &cobra.Command{
	Use:   "pcm",
	Short: "Bridge avr/pcm commands to the peripheral control computer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runService("pcm", func(cfg *config.Config) (service, error) {
			return pcm.New(cfg)
		})
	},
}

func init() {
	rootCmd.AddCommand(pcmCmd)
}
