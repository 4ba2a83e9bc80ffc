// Package naming asks a chat-completion endpoint to propose descriptive
// filenames and summaries from OCR text.
package naming

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brooksc/ai-rename/internal/logging"
	"github.com/brooksc/ai-rename/pkg/types"
)

// requestTimeout bounds each completion call so a stalled endpoint never
// blocks the run indefinitely. Package-level var for test substitution.
var requestTimeout = 90 * time.Second

// maxCompletionTokens caps the proposal length; a filename or short
// summary never needs more.
const maxCompletionTokens = 100

// connectivityPrompt and its expected acknowledgment implement the
// endpoint self-test.
const (
	connectivityPrompt = "Test prompt: Please respond with 'Test successful'"
	connectivityAck    = "Test successful"
)

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiBase string
	token   string
	model   string
	prompts types.Prompts
	format  types.ResponseFormat

	httpClient *http.Client
	log        *logging.Logger
}

// NewClient builds a client from the resolved configuration.
func NewClient(cfg types.Config, log *logging.Logger) *Client {
	return &Client{
		apiBase:    cfg.APIBase,
		token:      cfg.APIToken,
		model:      cfg.Model,
		prompts:    cfg.Prompts,
		format:     cfg.ResponseFormat,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
}

// chatMessage is a single message in the completion conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the completion request body. Sampling is deterministic
// and output length bounded.
type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

// chatResponse is the subset of the completion response the pipeline
// reads: the first choice's message content.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// structuredProposal is the message content shape when the endpoint is
// prompted to answer in JSON: the proposed filename plus the model's
// reasoning for it.
type structuredProposal struct {
	Filename      string `json:"filename"`
	Justification string `json:"justification"`
}

// Propose asks the endpoint for a filename proposal from OCR text. The
// configured filename-generation instruction rides as the system
// message. An error means the proposal is absent.
func (c *Client) Propose(ctx context.Context, ocrText string) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: c.prompts.FilenameGeneration},
		{Role: "user", Content: "Here is the file content: " + ocrText},
	}
	content, err := c.completeWithRetry(ctx, messages)
	if err != nil {
		return "", err
	}
	if c.format != types.FormatJSON {
		return content, nil
	}

	var prop structuredProposal
	if err := json.Unmarshal([]byte(content), &prop); err != nil {
		return "", &Error{Kind: KindDecode, Msg: fmt.Sprintf("parsing structured proposal %q", content), Cause: err}
	}
	if prop.Filename == "" {
		return "", &Error{Kind: KindDecode, Msg: "structured proposal has no filename"}
	}
	c.log.Debug("proposal justification", "justification", prop.Justification)
	return strings.TrimSpace(prop.Filename), nil
}

// Summarize asks the endpoint for a summary of OCR text using the
// configured summarization instruction.
func (c *Client) Summarize(ctx context.Context, ocrText string) (string, error) {
	messages := []chatMessage{
		{Role: "user", Content: c.prompts.Summarization + ":" + ocrText},
	}
	return c.completeWithRetry(ctx, messages)
}

// TestConnectivity sends a fixed sentinel prompt and succeeds only when
// the literal acknowledgment appears in the response.
func (c *Client) TestConnectivity(ctx context.Context) error {
	messages := []chatMessage{
		{Role: "user", Content: connectivityPrompt},
	}
	resp, err := c.completeWithRetry(ctx, messages)
	if err != nil {
		return err
	}
	if !strings.Contains(resp, connectivityAck) {
		return fmt.Errorf("connectivity test failed: expected %q in response %q", connectivityAck, resp)
	}
	return nil
}

// completeWithRetry applies the retry policy: one extra attempt with
// the identical payload when the failure kind allows it, otherwise fail
// fast.
func (c *Client) completeWithRetry(ctx context.Context, messages []chatMessage) (string, error) {
	text, err := c.complete(ctx, messages)
	if err == nil {
		return text, nil
	}
	if PolicyFor(KindOf(err)) != RetryOnce {
		return "", err
	}
	c.log.Warn("completion request rejected, retrying once", "kind", KindOf(err))
	return c.complete(ctx, messages)
}

// complete performs one completion call and classifies any failure.
func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
		MaxTokens:   maxCompletionTokens,
		Stream:      false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: KindDecode, Msg: "marshaling request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Msg: "creating request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindNetwork, Msg: "calling completion endpoint", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		kind := KindHTTPStatus
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			kind = KindBadRequest
		}
		return "", &Error{Kind: kind, Msg: fmt.Sprintf("endpoint returned %d: %s", resp.StatusCode, body)}
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", &Error{Kind: KindDecode, Msg: "decoding response body", Cause: err}
	}

	if len(cResp.Choices) == 0 {
		return "", &Error{Kind: KindEmptyChoices, Msg: "response contains no choices"}
	}

	content := strings.TrimSpace(cResp.Choices[0].Message.Content)
	c.log.Debug("completion response", "content", content)
	return content, nil
}
