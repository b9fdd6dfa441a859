// Package facedetect implements the face gateway against the camera
// companion server.
package facedetect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"vending-backend/application/ports"
	"vending-backend/domain/vending"
	apperrors "vending-backend/pkg/errors"
	"vending-backend/pkg/observability"
)

const (
	loadPath = "/api/vending/load"
	savePath = "/api/vending/save"

	// The companion server multiplexes several machines; this backend
	// serves the first one.
	vendingID = 0
)

// Client talks to the face and emotion detection server over HTTP. A
// circuit breaker keeps a dead camera from adding latency to every voice
// turn; while the breaker is open, calls fail fast and the dialog falls
// back to its anonymous paths.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *observability.Collector
	logger  *zap.Logger
}

var _ ports.FaceGateway = (*Client)(nil)

// NewClient creates a face gateway for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Collector, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "face-server",
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

// loadRequest is the body of a state read from the companion server.
type loadRequest struct {
	VendingID int    `json:"vendingId"`
	Prop      string `json:"prop"`
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	_, err := c.breaker.Execute(func() (any, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("face server returned status %d", resp.StatusCode)
		}

		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, nil
	})
	return err
}

// DetectEmotion returns the dominant expression currently seen by the
// camera. The server reports confidence per expression; the highest one
// wins. An empty or all-zero report maps to EmotionUndefined.
func (c *Client) DetectEmotion(ctx context.Context) (vending.Emotion, error) {
	var expressions map[string]float64
	err := c.post(ctx, loadPath, loadRequest{VendingID: vendingID, Prop: "expressions"}, &expressions)
	c.metrics.ObserveDetectorRequest("detect_emotion", err)
	if err != nil {
		return vending.EmotionUndefined, apperrors.NewServiceUnavailable("face server unreachable", err)
	}

	var max float64
	dominant := vending.EmotionUndefined
	for expression, confidence := range expressions {
		if confidence > max {
			max = confidence
			dominant = vending.ParseEmotion(expression)
		}
	}
	return dominant, nil
}

// DetectUserName returns the name of the recognized person, or an empty
// string when nobody is recognized.
func (c *Client) DetectUserName(ctx context.Context) (string, error) {
	var name string
	err := c.post(ctx, loadPath, loadRequest{VendingID: vendingID, Prop: "userName"}, &name)
	c.metrics.ObserveDetectorRequest("detect_user", err)
	if err != nil {
		return "", apperrors.NewServiceUnavailable("face server unreachable", err)
	}
	return name, nil
}

// SetProfileMode reconfigures the face server, e.g. to start enrolling a
// profile for a name. The server answers with whether it accepted the
// change.
func (c *Client) SetProfileMode(ctx context.Context, cfg ports.ProfileConfig) (bool, error) {
	var accepted bool
	err := c.post(ctx, savePath, cfg, &accepted)
	c.metrics.ObserveDetectorRequest("set_profile_mode", err)
	if err != nil {
		return false, apperrors.NewServiceUnavailable("face server unreachable", err)
	}
	return accepted, nil
}
