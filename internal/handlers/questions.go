package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quizforge-backend/internal/cache"
	"quizforge-backend/internal/generator"
	"quizforge-backend/pkg/logging/logging"
)

// Producer statuses that mean "work is already underway": the fast
// path reports them instead of kicking off a second generation.
const (
	statusPending    = "pending"
	statusGenerating = "generating"
)

// QuestionsHandler serves the fast path: precomputed batch if one
// exists, otherwise synchronous generation.
type QuestionsHandler struct {
	Pregen    *cache.PregenCache
	Status    *cache.StatusTracker
	Generator generator.Client
}

func NewQuestionsHandler(pregen *cache.PregenCache, status *cache.StatusTracker, gen generator.Client) *QuestionsHandler {
	return &QuestionsHandler{
		Pregen:    pregen,
		Status:    status,
		Generator: gen,
	}
}

type questionsResponse struct {
	Source    string                 `json:"source"` // pregenerated | generated
	TopicID   int64                  `json:"topic_id"`
	Questions []cache.QuestionRecord `json:"questions"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// GetQuestions handles GET /v1/topics/{topicID}/questions.
func (h *QuestionsHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	topicID, ok := pathID(r, "topicID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_topic_id")
		return
	}
	userID, ok := headerUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_user_id")
		return
	}

	// ---- Fast path: pop a precomputed batch ----
	lookupStart := time.Now()
	items, hit := h.Pregen.TakeOnce(ctx, topicID, userID)
	lookupLatency := time.Since(lookupStart)

	if hit {
		logger.Info("cache_decision",
			zap.String("cache_region", cache.NamespacePregen),
			zap.Int64("topic_id", topicID),
			zap.Int64("user_id", userID),
			zap.Bool("cache_hit", true),
			zap.Duration("cache_lookup_latency", lookupLatency),
			zap.Duration("total_latency", time.Since(start)),
		)

		writeJSON(w, http.StatusOK, questionsResponse{
			Source:    "pregenerated",
			TopicID:   topicID,
			Questions: items,
		})
		return
	}

	// ---- Miss: is the producer already working on this batch? ----
	if status, found := h.Status.GetStatus(ctx, topicID, userID); found {
		if status == statusPending || status == statusGenerating {
			logger.Info("cache_decision",
				zap.String("cache_region", cache.NamespacePregen),
				zap.Int64("topic_id", topicID),
				zap.Int64("user_id", userID),
				zap.Bool("cache_hit", false),
				zap.String("generation_status", status),
				zap.Duration("total_latency", time.Since(start)),
			)

			writeJSON(w, http.StatusAccepted, statusResponse{Status: status})
			return
		}
	}

	// ---- Synchronous fallback: always correct, only slower ----
	genStart := time.Now()
	resp, err := h.Generator.Generate(ctx, &generator.GenerateRequest{
		TopicID: topicID,
		UserID:  userID,
	})
	genLatency := time.Since(genStart)

	if err != nil {
		logger.Error("synchronous generation failed",
			zap.Int64("topic_id", topicID),
			zap.Int64("user_id", userID),
			zap.Duration("generation_latency", genLatency),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "generation_failed")
		return
	}

	logger.Info("cache_decision",
		zap.String("cache_region", cache.NamespacePregen),
		zap.Int64("topic_id", topicID),
		zap.Int64("user_id", userID),
		zap.Bool("cache_hit", false),
		zap.Duration("cache_lookup_latency", lookupLatency),
		zap.Duration("generation_latency", genLatency),
		zap.Duration("total_latency", time.Since(start)),
	)

	writeJSON(w, http.StatusOK, questionsResponse{
		Source:    "generated",
		TopicID:   topicID,
		Questions: toRecords(resp.Questions),
	})
}

func toRecords(questions []generator.Question) []cache.QuestionRecord {
	records := make([]cache.QuestionRecord, len(questions))
	for i, q := range questions {
		records[i] = cache.QuestionRecord(q)
	}
	return records
}

// pathID parses a positive int64 URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// headerUserID reads the authenticated user id from X-User-ID.
func headerUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
