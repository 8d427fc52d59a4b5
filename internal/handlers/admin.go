package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quizforge-backend/internal/cache"
	"quizforge-backend/pkg/logging/logging"
)

// AdminHandler is the producer-facing and operator-facing surface:
// batch ingest, status updates and manual invalidation.
type AdminHandler struct {
	Pregen *cache.PregenCache
	Status *cache.StatusTracker
}

func NewAdminHandler(pregen *cache.PregenCache, status *cache.StatusTracker) *AdminHandler {
	return &AdminHandler{Pregen: pregen, Status: status}
}

// IngestBatch handles POST /internal/pregen/topics/{topicID}/users/{userID}.
// The generation pipeline calls this once a batch is ready; the write
// is best-effort, so the producer gets 204 even when the cache backend
// is down.
func (h *AdminHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	topicID, ok := pathID(r, "topicID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_topic_id")
		return
	}
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	var items []cache.QuestionRecord
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		logger.Warn("invalid ingest body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "empty_batch")
		return
	}

	if err := h.Pregen.Put(ctx, topicID, userID, items, 0); err != nil {
		// Only contract violations surface here.
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := h.Status.SetStatus(ctx, topicID, userID, "ready"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	logger.Info("pregen batch ingested",
		zap.Int64("topic_id", topicID),
		zap.Int64("user_id", userID),
		zap.Int("items", len(items)),
	)

	w.WriteHeader(http.StatusNoContent)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles POST /internal/status/topics/{topicID}/users/{userID}.
// The producer reports progress tokens at its discretion; the tracker
// does not validate the vocabulary.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topicID, ok := pathID(r, "topicID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_topic_id")
		return
	}
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if err := h.Status.SetStatus(ctx, topicID, userID, req.Status); err != nil {
		if errors.Is(err, cache.ErrEmptyStatus) {
			writeError(w, http.StatusBadRequest, "empty_status")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Invalidate handles DELETE /internal/pregen/topics/{topicID}/users/{userID}.
// Clears both the precomputed batch and the status token.
func (h *AdminHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	topicID, ok := pathID(r, "topicID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_topic_id")
		return
	}
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	if err := h.Pregen.Invalidate(ctx, topicID, userID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := h.Status.Invalidate(ctx, topicID, userID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	logger.Info("pregen batch invalidated",
		zap.Int64("topic_id", topicID),
		zap.Int64("user_id", userID),
	)

	w.WriteHeader(http.StatusNoContent)
}
