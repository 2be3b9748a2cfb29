// Package guidance requests advisory text for a tutorial step from a remote
// generative language model.
package guidance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iwvelando/strategy-simulator/internal/tutorial"
	"github.com/iwvelando/strategy-simulator/pkg/constants"
	"go.uber.org/zap"
)

// UserMessage is shown to the user whenever guidance cannot be produced.
const UserMessage = "Failed to get response from AI. Please check API key and network connection."

// ErrGuidanceUnavailable matches every failure returned by a Generator.
var ErrGuidanceUnavailable = errors.New("guidance unavailable")

// UnavailableError is the single error kind returned when guidance fails.
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrGuidanceUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrGuidanceUnavailable
}

func unavailable(err error) error {
	return &UnavailableError{Message: UserMessage, Err: err}
}

// Generator produces advisory text for a step and a user strategy.
type Generator interface {
	GenerateGuidance(ctx context.Context, step tutorial.Step, strategy string) (string, error)
}

// Config holds the client parameters.
type Config struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

// DefaultConfig returns the standard model parameters without an API key.
func DefaultConfig() Config {
	return Config{
		Endpoint:    constants.DefaultGuidanceEndpoint,
		Model:       constants.DefaultGuidanceModel,
		Temperature: constants.DefaultGuidanceTemperature,
		TopP:        constants.DefaultGuidanceTopP,
		Timeout:     constants.DefaultGuidanceTimeoutSeconds * time.Second,
	}
}

// Client calls the generateContent REST endpoint.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewClient builds a Client. Zero-valued config fields take their defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// BuildPrompt renders the instruction sent to the model.
func BuildPrompt(step tutorial.Step, strategy string) string {
	return fmt.Sprintf(`You are an expert consultant in systems dynamics and business strategy.
A user is building a simple systems dynamic simulation to test a strategy.

User's Strategy: %q

Current Step: %q
Step Description: %q

Your Task:
Provide clear, concise, and actionable guidance for the user on how to complete the CURRENT STEP specifically for THEIR STRATEGY.
- Explain the importance of this step in the context of their stated strategy.
- Provide concrete examples and a list of potential items they should consider or create for this step.
- Format your response using markdown-style headings (e.g., using '**' for bolding titles) and bullet points (using '-') for readability.
- Keep the tone helpful and encouraging.
`, strategy, step.Title, step.Description)
}

// GenerateGuidance asks the model for advice on step given strategy. Any
// failure is returned as an *UnavailableError; there is no retry.
func (c *Client) GenerateGuidance(ctx context.Context, step tutorial.Step, strategy string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", unavailable(errors.New("API key not set"))
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: BuildPrompt(step, strategy)}},
		}},
		GenerationConfig: generationConfig{
			Temperature: c.cfg.Temperature,
			TopP:        c.cfg.TopP,
		},
	})
	if err != nil {
		return "", unavailable(fmt.Errorf("failed to encode request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.Endpoint, url.PathEscape(c.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", unavailable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("guidance request failed",
			zap.String("op", "guidance.GenerateGuidance"),
			zap.Error(err),
		)
		return "", unavailable(fmt.Errorf("request failed: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("guidance request rejected",
			zap.String("op", "guidance.GenerateGuidance"),
			zap.Int("status", resp.StatusCode),
		)
		return "", unavailable(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", unavailable(fmt.Errorf("failed to decode response: %w", err))
	}

	var text strings.Builder
	if len(decoded.Candidates) > 0 {
		for _, p := range decoded.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", unavailable(errors.New("response contained no text"))
	}

	c.logger.Debug("guidance generated",
		zap.String("op", "guidance.GenerateGuidance"),
		zap.String("step", step.Title),
		zap.Int("chars", text.Len()),
		zap.Duration("duration", time.Since(start)),
	)

	return text.String(), nil
}
