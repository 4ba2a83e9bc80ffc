package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brooksc/ai-rename/internal/logging"
	"github.com/brooksc/ai-rename/internal/naming"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connectivity to the completion endpoint",
	Long: `Test sends a fixed prompt to the configured completion endpoint and
verifies the expected acknowledgment comes back. Exits non-zero when the
endpoint is unreachable or answers unexpectedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		modelOverride, _ := cmd.Flags().GetString("model")

		cfg, err := resolveConfig(true, false, modelOverride)
		if err != nil {
			return err
		}

		log := logging.New(os.Stderr, "ai-rename", debug)
		client := naming.NewClient(cfg, log)
		if err := client.TestConnectivity(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Connectivity test successful.")
		return nil
	},
}

func init() {
	testCmd.Flags().BoolP("debug", "d", false, "verbose logging")
	testCmd.Flags().StringP("model", "m", "", "override the configured completion model")

	rootCmd.AddCommand(testCmd)
}
