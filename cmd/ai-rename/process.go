package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brooksc/ai-rename/internal/logging"
	"github.com/brooksc/ai-rename/internal/naming"
	"github.com/brooksc/ai-rename/internal/ocr"
	"github.com/brooksc/ai-rename/internal/ocr/tesseract"
	"github.com/brooksc/ai-rename/internal/pipeline"
	"github.com/brooksc/ai-rename/internal/relocate"
	"github.com/brooksc/ai-rename/internal/toolexec"
	"github.com/brooksc/ai-rename/internal/workspace"
	"github.com/brooksc/ai-rename/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process <path>",
	Short: "OCR files and rename them from their content",
	Long: `Process extracts the text of each eligible file under path (or of the
single file path names), asks the completion endpoint for a descriptive
filename, validates it, and relocates the file according to the selected
mode.

Exactly one of --dry-run, --rename, --move, or --copy selects the mode.
With no mode flag the run behaves as a dry run and nothing on disk
changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Bool("dry-run", false, "log the intended renames without touching any file")
	processCmd.Flags().Bool("rename", false, "place renamed files into done/")
	processCmd.Flags().Bool("move", false, "move files into done/ under their new names")
	processCmd.Flags().Bool("copy", false, "copy renamed files into done/ and preserve originals")
	processCmd.Flags().Bool("keep-original", false, "preserve the original file after renaming (same as --copy)")
	processCmd.Flags().BoolP("summarize", "s", false, "also summarize each file's text into the run workspace")
	processCmd.Flags().Bool("keep-ocr-output", false, "save the extracted text as <name>_ocr.txt next to each source")
	processCmd.Flags().Bool("progress", false, "show a per-directory progress bar")
	processCmd.Flags().BoolP("debug", "d", false, "verbose logging; the run workspace is retained for inspection")
	processCmd.Flags().StringP("model", "m", "", "override the configured completion model")
	processCmd.MarkFlagsMutuallyExclusive("dry-run", "rename", "move", "copy", "keep-original")

	rootCmd.AddCommand(processCmd)
}

// selectMode maps the mode flags to a relocation mode. The second return
// value is true when no flag was given and dry-run was assumed.
func selectMode(cmd *cobra.Command) (types.Mode, bool) {
	get := func(name string) bool {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	switch {
	case get("move"):
		return types.ModeMove, false
	case get("copy"), get("keep-original"):
		return types.ModeCopy, false
	case get("rename"):
		return types.ModeRename, false
	case get("dry-run"):
		return types.ModeDryRun, false
	}
	return types.ModeDryRun, true
}

func runProcess(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	summarize, _ := cmd.Flags().GetBool("summarize")
	keepOCR, _ := cmd.Flags().GetBool("keep-ocr-output")
	progress, _ := cmd.Flags().GetBool("progress")
	modelOverride, _ := cmd.Flags().GetString("model")

	mode, assumed := selectMode(cmd)
	log := logging.New(os.Stderr, "ai-rename", debug)
	if assumed {
		fmt.Fprintln(os.Stderr, "No mode selected; running as a dry run. Use --rename, --move, or --copy to relocate files.")
	}

	cfg, err := resolveConfig(true, summarize, modelOverride)
	if err != nil {
		return err
	}

	needTesseractBinary := cfg.OCRBackend == types.BackendExec
	if err := toolexec.CheckRequired(toolexec.Default, toolexec.Required(needTesseractBinary)); err != nil {
		return err
	}

	ws, err := workspace.New(debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Warn("workspace cleanup failed", "dir", ws.Dir, "err", err)
		}
	}()
	if debug {
		log.Info("workspace retained after run", "dir", ws.Dir)
	}

	var recognizer ocr.Recognizer
	switch cfg.OCRBackend {
	case types.BackendGosseract:
		recognizer = tesseract.NewRecognizer(cfg.Language, 300)
	default:
		recognizer = &ocr.ExecRecognizer{Exec: toolexec.Default, Lang: cfg.Language}
	}

	engine := ocr.NewEngine(ws, toolexec.Default, recognizer, log)
	namer := naming.NewClient(cfg, log)
	reloc := relocate.NewEngine(cfg.OrigSubdir, log)
	opts := pipeline.Options{
		Mode:          mode,
		Summarize:     summarize,
		KeepOCROutput: keepOCR,
		Progress:      progress,
	}
	p := pipeline.New(engine, namer, reloc, ws, opts, log, os.Stdout)

	result, err := p.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d of %d files failed", result.Failed, result.Total())
	}
	return nil
}
