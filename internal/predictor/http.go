package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"laptop-inventory-backend/internal/model"
)

// HTTP asks a remote service for a recommendation.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates an HTTP predictor posting to endpoint. An invalid proxy is
// logged and ignored.
func NewHTTP(endpoint, proxy string, timeout time.Duration, logger *zap.Logger) *HTTP {
	var transport http.RoundTripper = &http.Transport{}
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			logger.Warn("invalid predictor proxy URL, not using a proxy", zap.String("proxy", proxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	return &HTTP{
		url: endpoint,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Recommend implements ledger.Predictor.
func (p *HTTP) Recommend(ctx context.Context, employee model.CandidateFeatures, options []model.LaptopOption) (int64, error) {
	jsonBody, err := json.Marshal(Request{Employee: employee, Options: options})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("failed to unmarshal predictor response: %w", err)
	}
	return out.LaptopID, nil
}
