package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bellflight/avr/core/payloads"
	"github.com/bellflight/avr/infra/serial"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List registered topics and their payload types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, topic := range payloads.Topics() {
			t, _ := payloads.TypeFor(topic)
			fmt.Fprintf(w, "%s\t%s\n", topic, t.Name())
		}
		return w.Flush()
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serial.ListPorts()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd, portsCmd)
}
