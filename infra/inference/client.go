package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/evplanner/auth"
	"github.com/kilianp07/evplanner/infra/logger"
)

var (
	// ErrNoCredential is returned when neither an API key nor OAuth
	// credentials are configured.
	ErrNoCredential = errors.New("inference: no credential configured")
	// ErrStatus is wrapped around non-2xx responses.
	ErrStatus = errors.New("inference: unexpected status")
	// ErrEmptyReply is returned when the response carries no text.
	ErrEmptyReply = errors.New("inference: empty reply")
)

// Client calls a generateContent style endpoint. It implements
// recommend.Advisor.
type Client struct {
	cfg    Config
	http   *http.Client
	log    logger.Logger
	apiURL string
	// creds is set when the client authenticates with OAuth.
	creds *auth.ClientCred
}

// NewClient returns a Client. It returns ErrNoCredential when cfg has no
// credential so callers can run without inference. The API key wins over
// OAuth when both are set.
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	cfg.SetDefaults()
	if !cfg.Enabled() {
		return nil, ErrNoCredential
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    log,
		apiURL: fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(cfg.URL, "/"), cfg.Model),
	}
	if cfg.APIKey == "" {
		c.creds = auth.NewClientCred(cfg.OAuth)
	}
	return c, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Advise sends prompt and returns the concatenated text of the first
// candidate. There is no retry; the HTTP timeout bounds the call.
func (c *Client) Advise(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      c.cfg.Temperature,
			MaxOutputTokens:  c.cfg.MaxOutputTokens,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.creds != nil {
		if err := c.creds.SetAuthHeader(req); err != nil {
			return "", fmt.Errorf("inference auth: %w", err)
		}
	} else {
		req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debugw("inference response", map[string]any{
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status=%d body=%s", ErrStatus, resp.StatusCode, string(snippet))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", ErrEmptyReply
	}
	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", ErrEmptyReply
	}
	return b.String(), nil
}
