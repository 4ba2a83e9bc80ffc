// Package types holds the configuration and work records shared across
// pipeline stages.
package types

import (
	"fmt"
	"strings"
)

// OCRBackend identifies the text-recognition implementation.
type OCRBackend string

const (
	// BackendExec shells out to the tesseract binary.
	BackendExec OCRBackend = "exec"
	// BackendGosseract calls libtesseract through gosseract.
	BackendGosseract OCRBackend = "gosseract"
)

// ResponseFormat selects how the completion service returns a filename
// proposal.
type ResponseFormat string

const (
	// FormatText reads the proposal directly from the message content.
	FormatText ResponseFormat = "text"
	// FormatJSON expects the message content to be a JSON object with
	// "filename" and "justification" fields.
	FormatJSON ResponseFormat = "json"
)

// Prompts holds the system instructions sent to the completion service.
type Prompts struct {
	// FilenameGeneration instructs the model to propose a descriptive filename.
	FilenameGeneration string `yaml:"filename_generation"`

	// Summarization instructs the model to summarize document text.
	Summarization string `yaml:"summarization"`
}

// Config is the fully resolved run configuration. It is built once at
// startup from the config file, environment, and flags; the pipeline
// only ever sees a validated value.
type Config struct {
	// Language is the tesseract language code (default "eng").
	Language string `yaml:"LANGUAGE"`

	// OrigSubdir is the name of the preserved-originals subdirectory
	// (default "orig").
	OrigSubdir string `yaml:"ORIG_SUBDIR"`

	// Model is the completion model identifier.
	Model string `yaml:"MODEL"`

	// APIBase is the completion endpoint URL.
	APIBase string `yaml:"API_BASE"`

	// APIToken is the credential for the completion endpoint. When empty
	// it falls back to .secrets/api-token.
	APIToken string `yaml:"API_TOKEN,omitempty"`

	// OCRBackend selects the recognizer: exec (default) or gosseract.
	OCRBackend OCRBackend `yaml:"OCR_BACKEND,omitempty"`

	// ResponseFormat selects the naming response shape: text (default)
	// or json.
	ResponseFormat ResponseFormat `yaml:"RESPONSE_FORMAT,omitempty"`

	// Prompts are the system instructions for naming and summarization.
	Prompts Prompts `yaml:"prompts"`
}

// ApplyDefaults fills in defaulted fields left empty by the config source.
func (c *Config) ApplyDefaults() {
	if c.Language == "" {
		c.Language = "eng"
	}
	if c.OrigSubdir == "" {
		c.OrigSubdir = "orig"
	}
	if c.OCRBackend == "" {
		c.OCRBackend = BackendExec
	}
	if c.ResponseFormat == "" {
		c.ResponseFormat = FormatText
	}
}

// Validate reports the missing required fields for the requested
// operations. needNaming covers filename generation and the connectivity
// test; needSummary covers summarization.
func (c Config) Validate(needNaming, needSummary bool) error {
	var missing []string
	if needNaming || needSummary {
		if c.Model == "" {
			missing = append(missing, "MODEL")
		}
		if c.APIBase == "" {
			missing = append(missing, "API_BASE")
		}
	}
	if needNaming && c.Prompts.FilenameGeneration == "" {
		missing = append(missing, "prompts.filename_generation")
	}
	if needSummary && c.Prompts.Summarization == "" {
		missing = append(missing, "prompts.summarization")
	}
	if c.OCRBackend != BackendExec && c.OCRBackend != BackendGosseract {
		return fmt.Errorf("unknown OCR_BACKEND %q (want %q or %q)", c.OCRBackend, BackendExec, BackendGosseract)
	}
	if c.ResponseFormat != FormatText && c.ResponseFormat != FormatJSON {
		return fmt.Errorf("unknown RESPONSE_FORMAT %q (want %q or %q)", c.ResponseFormat, FormatText, FormatJSON)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
