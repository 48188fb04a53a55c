// Package gateway holds the client for the external recoloring model
// service. The model is a black box behind an HTTP call contract: it takes
// a normalized image plus a six-color palette and returns the recolored
// image. Inference is expensive, so this client never retries; retry is a
// caller decision.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// TimeoutError means the model did not answer within the configured bound.
type TimeoutError struct {
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("model inference timed out after %s", e.Elapsed.Round(time.Millisecond))
}

// InferenceError means the model service answered but failed.
type InferenceError struct {
	Status int
	Msg    string
}

func (e *InferenceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("model inference failed (status %d): %s", e.Status, e.Msg)
	}
	return "model inference failed: " + e.Msg
}

// ModelClient calls the recoloring model service.
type ModelClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewModelClient creates a client for the model service at baseURL.
// A zero timeout defaults to 60 seconds (inference takes seconds).
func NewModelClient(baseURL string, timeout time.Duration) *ModelClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ModelClient{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type inferRequest struct {
	ImageB64 string   `json:"image_b64"`
	Palette  [][3]int `json:"palette"`
}

type inferResponse struct {
	ResultB64 string `json:"result_b64"`
	Error     string `json:"error,omitempty"`
}

// Recolor runs inference and returns the recolored image bytes. The palette
// must already be fitted to the model's slot count; the image must already
// be normalized.
func (c *ModelClient) Recolor(ctx context.Context, asset *models.ImageAsset, p models.Palette) ([]byte, error) {
	if asset == nil || len(asset.Bytes) == 0 {
		return nil, &InferenceError{Msg: "no image to recolor"}
	}

	palette := make([][3]int, len(p.Colors))
	for i, col := range p.Colors {
		palette[i] = [3]int{int(col.R), int(col.G), int(col.B)}
	}

	body, err := json.Marshal(inferRequest{
		ImageB64: base64.StdEncoding.EncodeToString(asset.Bytes),
		Palette:  palette,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal inference request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/infer", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, &TimeoutError{Elapsed: time.Since(start)}
		}
		return nil, &InferenceError{Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &InferenceError{Status: resp.StatusCode, Msg: string(bytes.TrimSpace(msg))}
	}

	var parsed inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &InferenceError{Msg: "undecodable model response: " + err.Error()}
	}
	if parsed.Error != "" {
		return nil, &InferenceError{Msg: parsed.Error}
	}

	result, err := base64.StdEncoding.DecodeString(parsed.ResultB64)
	if err != nil || len(result) == 0 {
		return nil, &InferenceError{Msg: "model returned no image"}
	}
	return result, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
