package generator

import (
	"context"
	"errors"
	"fmt"
)

// Question is one generated question as returned by the generation
// service. The fields are owned by that service; this client and the
// cache pass them through untouched.
type Question map[string]any

// GenerateRequest asks the generation service for a batch of questions
// on a topic, scoped to a user.
type GenerateRequest struct {
	TopicID int64 `json:"topic_id"`
	UserID  int64 `json:"user_id"`
	Count   int   `json:"count,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	if r.TopicID <= 0 {
		return errors.New("topic_id must be positive")
	}
	if r.UserID <= 0 {
		return errors.New("user_id must be positive")
	}
	if r.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", r.Count)
	}
	return nil
}

// GenerateResponse is the batch produced synchronously by the service.
type GenerateResponse struct {
	TopicID   int64      `json:"topic_id"`
	Model     string     `json:"model,omitempty"`
	Questions []Question `json:"questions"`
}

type Client interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}
