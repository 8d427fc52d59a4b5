package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizforge-backend/internal/cache"
)

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestIngestThenTakeRoundTrip(t *testing.T) {
	env := newTestEnv(t, cache.NewMemoryStore(time.Minute))

	body := `[{"q":"What is the capital of France?","a":"Paris"}]`
	rr := env.do(t, http.MethodPost, "/internal/pregen/topics/7/users/42", body)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// Ingest marks the batch ready.
	status, ok := env.tracker.GetStatus(context.Background(), 7, 42)
	require.True(t, ok)
	assert.Equal(t, "ready", status)

	// The fast path now serves the ingested batch.
	rr = env.get(t, "/v1/topics/7/questions", "42")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp questionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "pregenerated", resp.Source)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "Paris", resp.Questions[0]["a"])
}

func TestIngestRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, cache.NewMemoryStore(time.Minute))

	rr := env.do(t, http.MethodPost, "/internal/pregen/topics/7/users/42", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/internal/pregen/topics/7/users/42", `[]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/internal/pregen/topics/0/users/42", `[{"q":"x"}]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIngestSucceedsWithDegradedBackend(t *testing.T) {
	env := newTestEnv(t, nil)

	// Best-effort write: the producer never sees cache trouble.
	rr := env.do(t, http.MethodPost, "/internal/pregen/topics/7/users/42", `[{"q":"x"}]`)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t, cache.NewMemoryStore(time.Minute))

	rr := env.do(t, http.MethodPost, "/internal/status/topics/3/users/9", `{"status":"generating"}`)
	require.Equal(t, http.StatusNoContent, rr.Code)

	status, ok := env.tracker.GetStatus(context.Background(), 3, 9)
	require.True(t, ok)
	assert.Equal(t, "generating", status)

	rr = env.do(t, http.MethodPost, "/internal/status/topics/3/users/9", `{"status":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInvalidateClearsBatchAndStatus(t *testing.T) {
	env := newTestEnv(t, cache.NewMemoryStore(time.Minute))
	ctx := context.Background()

	require.NoError(t, env.pregen.Put(ctx, 7, 42, []cache.QuestionRecord{{"q": "x"}}, time.Minute))
	require.NoError(t, env.tracker.SetStatus(ctx, 7, 42, "ready"))

	rr := env.do(t, http.MethodDelete, "/internal/pregen/topics/7/users/42", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	_, ok := env.pregen.TakeOnce(ctx, 7, 42)
	assert.False(t, ok)

	_, ok = env.tracker.GetStatus(ctx, 7, 42)
	assert.False(t, ok)
}
