package postalcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"signup/internal/registration/metrics"
	"signup/internal/registration/models"
	"signup/pkg/platform/circuit"
)

//go:generate mockgen -source=viacep.go -destination=mocks/http_mock.go -package=mocks

const maxResponseBytes = 64 << 10

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ViaCEPConfig configures a ViaCEP client. Zero values pick defaults.
type ViaCEPConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Breaker    *circuit.Breaker
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// ViaCEPClient queries the public ViaCEP API. One attempt per call; repeated
// transport failures open the breaker and further calls fail fast until its
// cooldown elapses.
type ViaCEPClient struct {
	baseURL string
	client  HTTPDoer
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewViaCEPClient(cfg ViaCEPConfig) *ViaCEPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://viacep.com.br"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	breaker := cfg.Breaker
	if breaker == nil {
		breaker = circuit.New("viacep")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ViaCEPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		breaker: breaker,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// viaCEPResponse mirrors the upstream payload. "erro" has been observed both
// as a boolean and as the string "true".
type viaCEPResponse struct {
	CEP        string   `json:"cep"`
	Logradouro string   `json:"logradouro"`
	Bairro     string   `json:"bairro"`
	Localidade string   `json:"localidade"`
	UF         string   `json:"uf"`
	Erro       flexBool `json:"erro"`
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	*b = flexBool(strings.EqualFold(strings.Trim(string(data), `"`), "true"))
	return nil
}

func (c *ViaCEPClient) Lookup(ctx context.Context, postalCode string) Result {
	start := time.Now()
	if !c.breaker.Allow() {
		c.metrics.RecordLookup(string(StatusTransportError), 0)
		return TransportFailure(ErrCircuitOpen)
	}

	res := c.fetch(ctx, postalCode)
	c.recordOutcome(res)
	c.metrics.RecordLookup(string(res.Status), time.Since(start).Seconds())
	return res
}

func (c *ViaCEPClient) recordOutcome(res Result) {
	if res.Status == StatusTransportError {
		if change := c.breaker.RecordFailure(); change.Opened {
			c.logger.Warn("postal code lookup circuit opened",
				"breaker", c.breaker.Name(),
				"error", res.Err,
			)
			c.metrics.SetBreakerOpen(true)
		}
		return
	}
	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("postal code lookup circuit closed", "breaker", c.breaker.Name())
		c.metrics.SetBreakerOpen(false)
	}
}

func (c *ViaCEPClient) fetch(ctx context.Context, postalCode string) Result {
	endpoint := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, url.PathEscape(postalCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return TransportFailure(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return TransportFailure(fmt.Errorf("%w: %w", ErrTimeout, err))
		}
		return TransportFailure(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusNotFound:
		return NotFound()
	default:
		return TransportFailure(fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return TransportFailure(fmt.Errorf("read response: %w", err))
	}
	var payload viaCEPResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return TransportFailure(fmt.Errorf("%w: %w", ErrMalformedResponse, err))
	}
	if payload.Erro {
		return NotFound()
	}

	addr := models.AddressRecord{
		Street:       strings.TrimSpace(payload.Logradouro),
		Neighborhood: strings.TrimSpace(payload.Bairro),
		City:         strings.TrimSpace(payload.Localidade),
		StateCode:    strings.TrimSpace(payload.UF),
	}
	// City-wide codes carry only city and state. They are still Found so the
	// street of a previous code is cleared and must be typed again.
	if addr.IsEmpty() {
		return NotFound()
	}
	return Found(addr)
}
