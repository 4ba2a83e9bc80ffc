// Package main is the entry point for the ai-rename CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brooksc/ai-rename/internal/secrets"
	"github.com/brooksc/ai-rename/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir is where the completion credential is looked up when the
// configuration does not carry one.
const secretsDir = ".secrets/"

// rootCmd is the base command for the ai-rename CLI.
var rootCmd = &cobra.Command{
	Use:   "ai-rename",
	Short: "Rename scanned documents from their OCR'd content",
	Long: `ai-rename extracts the text of scanned PDFs and images with OCR, asks a
completion endpoint to propose a descriptive filename from that text, and
relocates each file under its new name into a done/ directory.

Point it at a directory to process every eligible file (.pdf, .jpg, .png),
or at a single file. Without a mode flag nothing is moved; pass --rename,
--move, or --copy to relocate files.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ai-rename.yaml or ~/.config/ai-rename/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ai-rename")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ai-rename"))
		}
	}

	viper.SetEnvPrefix("AI_RENAME")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolveConfig builds the typed run configuration from viper, the
// secrets directory, and an optional --model override. The pipeline
// never reads viper itself. Validation failures are fatal setup errors.
func resolveConfig(needNaming, needSummary bool, modelOverride string) (types.Config, error) {
	cfg := types.Config{
		Language:       viper.GetString("LANGUAGE"),
		OrigSubdir:     viper.GetString("ORIG_SUBDIR"),
		Model:          viper.GetString("MODEL"),
		APIBase:        viper.GetString("API_BASE"),
		APIToken:       viper.GetString("API_TOKEN"),
		OCRBackend:     types.OCRBackend(viper.GetString("OCR_BACKEND")),
		ResponseFormat: types.ResponseFormat(viper.GetString("RESPONSE_FORMAT")),
		Prompts: types.Prompts{
			FilenameGeneration: viper.GetString("prompts.filename_generation"),
			Summarization:      viper.GetString("prompts.summarization"),
		},
	}
	cfg.ApplyDefaults()

	if modelOverride != "" {
		cfg.Model = modelOverride
	}
	if cfg.APIToken == "" {
		token, err := secrets.APIToken(secretsDir)
		if err != nil {
			return types.Config{}, err
		}
		cfg.APIToken = token
	}

	if err := cfg.Validate(needNaming, needSummary); err != nil {
		return types.Config{}, fmt.Errorf("%w (run 'ai-rename config init' to create a config file)", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
