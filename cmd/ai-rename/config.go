package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/brooksc/ai-rename/pkg/types"
)

// configHeader is prepended to the generated file. The prompt examples
// are starting points; endpoint and model must be filled in.
const configHeader = `# ai-rename configuration.
#
# MODEL, API_BASE, and prompts.filename_generation are required before
# any file can be renamed. The credential may live here as API_TOKEN or
# in a .secrets/api-token file next to the working directory.
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ai-rename configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default ai-rename.yaml in the current directory",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	const path = "ai-rename.yaml"
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := types.Config{
		Prompts: types.Prompts{
			FilenameGeneration: "You are given the OCR text of a scanned document. Respond with a single short descriptive filename for it, without an extension and without any explanation.",
			Summarization:      "Summarize the following document text in a few sentences",
		},
	}
	cfg.ApplyDefaults()

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), body...), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("Wrote %s. Fill in MODEL, API_BASE, and your prompts, then run 'ai-rename test'.\n", path)
	return nil
}
