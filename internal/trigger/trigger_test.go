package trigger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/docutran/internal/job"
)

type recordingHandler struct {
	got     []job.Trigger
	outcome job.Outcome
	err     error
}

func (h *recordingHandler) Handle(ctx context.Context, t job.Trigger) (job.Outcome, error) {
	h.got = append(h.got, t)
	return h.outcome, h.err
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEvent_Plain(t *testing.T) {
	h := &recordingHandler{outcome: job.OutcomeProcessed}
	rec := post(t, NewRouter(h, zerolog.Nop()), `{"name":"uploads/a.srt","bucket":"in","contentType":"text/plain"}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "processed", rec.Header().Get("X-Job-Outcome"))
	require.Len(t, h.got, 1)
	assert.Equal(t, job.Trigger{Name: "uploads/a.srt", Bucket: "in"}, h.got[0])
}

func TestEvent_StructuredCloudEvent(t *testing.T) {
	h := &recordingHandler{outcome: job.OutcomeIgnored}
	body := `{"specversion":"1.0","type":"google.cloud.storage.object.v1.finalized","source":"//storage.googleapis.com/projects/_/buckets/in","id":"1","data":{"name":"uploads/b.json","bucket":"in"}}`
	rec := post(t, NewRouter(h, zerolog.Nop()), body)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, h.got, 1)
	assert.Equal(t, "uploads/b.json", h.got[0].Name)
	assert.Equal(t, "in", h.got[0].Bucket)
}

func TestEvent_BadRequests(t *testing.T) {
	for _, body := range []string{"{not json", `{"name":"a.txt"}`, `{"bucket":"in"}`, `{}`} {
		h := &recordingHandler{}
		rec := post(t, NewRouter(h, zerolog.Nop()), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Empty(t, h.got)
	}
}

func TestEvent_JobFailureIs500(t *testing.T) {
	h := &recordingHandler{err: errors.New("storage unavailable")}
	rec := post(t, NewRouter(h, zerolog.Nop()), `{"name":"uploads/a.txt","bucket":"in"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(&recordingHandler{}, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestEvent_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(&recordingHandler{}, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer("127.0.0.1:0", NewRouter(&recordingHandler{}, zerolog.Nop()), zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, time.Second) }()
	cancel()
	assert.NoError(t, <-done)
}
