package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/veriflow-backend/internal/pkg/ctxutil"
	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/platform/envutil"
)

// Client invokes the external contract-processing agent. The agent does the
// actual document analysis; this pipeline only hands it a pointer to the
// uploaded object and records the outcome.
type Client interface {
	ProcessContract(ctx context.Context, req ProcessRequest) error
}

type ProcessRequest struct {
	UserID     string `json:"userId"`
	ContractID string `json:"contractId"`
	GCSPath    string `json:"gcsPath"`
}

type Config struct {
	URL     string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	timeoutSec := envutil.Int("CONTRACT_AGENT_TIMEOUT_SECONDS", 120)
	return Config{
		URL:     strings.TrimSpace(os.Getenv("CONTRACT_AGENT_URL")),
		Timeout: time.Duration(timeoutSec) * time.Second,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("missing CONTRACT_AGENT_URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &client{
		log:        log.With("client", "ContractAgentClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "contract agent: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("contract agent returned status %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// ProcessContract is deliberately single-shot: a failed agent run is
// recorded as a contract error for manual remediation, not retried here.
func (c *client) ProcessContract(ctx context.Context, req ProcessRequest) error {
	if c == nil || c.httpClient == nil {
		return fmt.Errorf("contract agent client unavailable")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("contract agent encode error: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("contract agent request: %w", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("contract agent read response: %w", readErr)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}
