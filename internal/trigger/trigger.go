// Package trigger receives storage events over HTTP and hands them to the
// job controller.
package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/valpere/docutran/internal/job"
)

// maxEventBytes bounds the request body; storage events are small.
const maxEventBytes = 1 << 20

// Handler is the job controller as seen by the trigger endpoint.
type Handler interface {
	Handle(ctx context.Context, t job.Trigger) (job.Outcome, error)
}

// event accepts the object fields at the top level (binary CloudEvents and
// plain JSON) or nested under "data" (structured CloudEvents).
type event struct {
	job.Trigger
	Data *job.Trigger `json:"data"`
}

func (e event) trigger() job.Trigger {
	if e.Data != nil && e.Data.Name != "" {
		return *e.Data
	}
	return e.Trigger
}

// NewRouter mounts POST / for events and GET /healthz.
func NewRouter(h Handler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	r.Post("/", eventHandler(h, log))
	return r
}

func eventHandler(h Handler, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With().Str("request_id", chimw.GetReqID(r.Context())).Logger()

		var ev event
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes)).Decode(&ev); err != nil {
			log.Warn().Err(err).Msg("malformed event body")
			http.Error(w, "malformed event body", http.StatusBadRequest)
			return
		}
		t := ev.trigger()
		if t.Name == "" || t.Bucket == "" {
			log.Warn().Msg("event without object name or bucket")
			http.Error(w, "event must carry name and bucket", http.StatusBadRequest)
			return
		}

		outcome, err := h.Handle(r.Context(), t)
		if err != nil {
			// 5xx makes the event source redeliver.
			log.Error().Err(err).Str("object", t.Name).Msg("job failed")
			http.Error(w, "job failed", http.StatusInternalServerError)
			return
		}
		log.Debug().Str("object", t.Name).Stringer("outcome", outcome).Msg("event handled")
		w.Header().Set("X-Job-Outcome", outcome.String())
		w.WriteHeader(http.StatusNoContent)
	}
}

// Server serves the trigger router until its context ends.
type Server struct {
	srv *http.Server
	log zerolog.Logger
}

func NewServer(addr string, handler http.Handler, log zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run blocks until ctx is cancelled or the listener fails. In-flight jobs
// get shutdownTimeout to finish.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("http listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
