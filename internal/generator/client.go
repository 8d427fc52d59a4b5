package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// defaultCount is requested when the caller does not say how many
	// questions it wants.
	defaultCount = 5

	maxCount = 50
)

// Generate asks the generation service for a batch of questions,
// synchronously. This is the slow path the request handler falls back
// to when no precomputed batch is available.
func (c *client) Generate(parentCtx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	if req == nil {
		return nil, fmt.Errorf("genclient: request is nil")
	}

	// Validate request
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("genclient: invalid request: %w", err)
	}
	if req.Count > maxCount {
		return nil, fmt.Errorf("genclient: count too large (%d, max %d)", req.Count, maxCount)
	}

	count := req.Count
	if count == 0 {
		count = defaultCount
	}

	c.logger.Debug("generation request starting",
		zap.Int64("topic_id", req.TopicID),
		zap.Int64("user_id", req.UserID),
		zap.Int("count", count),
	)

	// Per-request timeout (0 = only use parentCtx)
	var ctx context.Context
	var cancel context.CancelFunc
	if c.cfg.UpstreamTimeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, c.cfg.UpstreamTimeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}
	defer cancel()

	sReq := serviceGenerateRequest{
		TopicID: req.TopicID,
		UserID:  req.UserID,
		Count:   count,
	}

	bodyBytes, err := json.Marshal(sReq)
	if err != nil {
		return nil, fmt.Errorf("genclient: marshal request: %w", err)
	}

	url := c.cfg.BaseURL + "/v1/questions/generate"

	// doOnce builds a fresh *http.Request for each attempt
	doOnce := func(ctx context.Context, body []byte) (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("genclient: build HTTP request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(httpReq)
	}

	resp, err := c.doWithRetry(ctx, bodyBytes, doOnce)
	if err != nil {
		c.logger.Error("generation request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}
	defer resp.Body.Close()

	// Handle non-2xx responses
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		// Try to parse structured error
		var sErr serviceErrorResponse
		if err := json.Unmarshal(body, &sErr); err == nil && sErr.Error.Message != "" {
			c.logger.Error("generation service error",
				zap.Int("status", resp.StatusCode),
				zap.String("error_type", sErr.Error.Type),
				zap.String("error_message", sErr.Error.Message),
			)
			return nil, fmt.Errorf("genclient: upstream %d: %s (%s)",
				resp.StatusCode, sErr.Error.Message, sErr.Error.Type)
		}

		// Fallback to raw body
		c.logger.Error("generation upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 200)),
		)
		return nil, fmt.Errorf("genclient: upstream %d: %s",
			resp.StatusCode, truncate(string(body), 200))
	}

	// Decode success response
	var sResp serviceGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return nil, fmt.Errorf("genclient: decode upstream response: %w", err)
	}

	if len(sResp.Questions) == 0 {
		c.logger.Error("generation service returned no questions",
			zap.Int64("topic_id", req.TopicID),
		)
		return nil, fmt.Errorf("genclient: service returned no questions")
	}

	out := &GenerateResponse{
		TopicID:   sResp.TopicID,
		Model:     sResp.Model,
		Questions: sResp.Questions,
	}

	c.logger.Info("generation request completed",
		zap.Int64("topic_id", req.TopicID),
		zap.Int64("user_id", req.UserID),
		zap.Int("questions", len(out.Questions)),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

// truncate limits string length for logging
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
