// Package prediction calls the external lifestyle estimator, which turns
// raw activity descriptions into CO2 quantities the ledger can ingest.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	activitydomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/activity/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/config"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/tracing"
)

var (
	// ErrUnavailable means the estimator is not configured or not reachable.
	ErrUnavailable = errors.New("prediction_unavailable")
	// ErrBadEstimate means the estimator answered with an unusable quantity.
	ErrBadEstimate = errors.New("prediction_bad_estimate")
)

// EstimateRequest describes an activity for the estimator.
type EstimateRequest struct {
	Category     string         `json:"category"`
	ActivityType string         `json:"activity_type"`
	Value        float64        `json:"value"`
	Region       string         `json:"region,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// EstimateResponse is the estimator's answer.
type EstimateResponse struct {
	Co2Kg      float64 `json:"co2_kg"`
	Confidence float64 `json:"confidence,omitempty"`
	Model      string  `json:"model,omitempty"`
}

// Estimator asks an external model for a CO2 estimate.
type Estimator interface {
	Estimate(ctx context.Context, req EstimateRequest) (*EstimateResponse, error)
}

type ClientParam struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

// Client is the HTTP estimator client. Requests carry trace context so
// estimator latency shows up alongside the engine's own spans.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(p ClientParam) Estimator {
	httpClient := tracing.WrapHTTPClient(&http.Client{Timeout: p.Config.Prediction.Timeout})
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(p.Config.Prediction.BaseURL), "/"),
		http:    httpClient,
		log:     p.Log.Named("prediction.client"),
	}
}

func (c *Client) Estimate(ctx context.Context, req EstimateRequest) (*EstimateResponse, error) {
	if c.baseURL == "" {
		return nil, ErrUnavailable
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/estimate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn("estimator request failed", zap.Error(err))
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.log.Warn("estimator returned non-200", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var estimate EstimateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&estimate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEstimate, err)
	}
	if !activitydomain.ValidValue(estimate.Co2Kg) {
		return nil, ErrBadEstimate
	}
	return &estimate, nil
}

var Module = fx.Module("prediction.client",
	fx.Provide(NewClient),
)
