// Package job runs one translation job per input object and keeps it
// idempotent under repeated or overlapping triggers.
//
// Job state lives in marker objects next to the input: "<name>.processing"
// while a run holds the job and "<name>.done" once it has finished. A job
// with neither marker is absent and may be claimed.
package job

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/valpere/docutran/internal/document"
	"github.com/valpere/docutran/internal/format"
	"github.com/valpere/docutran/internal/lang"
	"github.com/valpere/docutran/internal/storage"
)

const (
	claimSuffix = ".processing"
	doneSuffix  = ".done"

	markerContentType = "text/plain; charset=utf-8"
)

// ClaimMarker is the object held while a run owns the job.
func ClaimMarker(name string) string { return name + claimSuffix }

// DoneMarker is the object that makes a job terminal.
func DoneMarker(name string) string { return name + doneSuffix }

// Trigger is a storage event naming the uploaded object.
type Trigger struct {
	Name   string `json:"name"`
	Bucket string `json:"bucket"`
}

type State string

const (
	StateAbsent  State = "absent"
	StateClaimed State = "claimed"
	StateDone    State = "done"
)

type Outcome int

const (
	OutcomeFailed Outcome = iota
	// OutcomeIgnored: outside the input prefix or unsupported extension.
	OutcomeIgnored
	OutcomeAlreadyDone
	OutcomeAlreadyClaimed
	OutcomeProcessed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeAlreadyDone:
		return "already-done"
	case OutcomeAlreadyClaimed:
		return "already-claimed"
	case OutcomeProcessed:
		return "processed"
	default:
		return "failed"
	}
}

// Naming selects the language key in output file names.
type Naming string

const (
	// NamingCode uses the lowercase language code: "ar_talk.srt".
	NamingCode Naming = "code"
	// NamingName uses the lowercase English name: "arabic_talk.srt".
	NamingName Naming = "name"
)

type Config struct {
	InputPrefix  string
	OutputPrefix string
	// OutputBucket receives translations; empty means the trigger's bucket.
	OutputBucket string
	Naming       Naming
}

// Translator produces the per-language documents for one input.
type Translator interface {
	Translate(ctx context.Context, raw string, adapter format.Adapter) (*document.Result, error)
}

type Controller struct {
	store      storage.Storage
	translator Translator
	cfg        Config
	log        zerolog.Logger
}

func New(store storage.Storage, translator Translator, cfg Config, log zerolog.Logger) *Controller {
	if cfg.Naming == "" {
		cfg.Naming = NamingCode
	}
	return &Controller{store: store, translator: translator, cfg: cfg, log: log}
}

// OutputDir is the directory holding every output of adapter's family.
func (c *Controller) OutputDir(adapter format.Adapter) string {
	return c.cfg.OutputPrefix + adapter.Family() + "_outputs"
}

// OutputName is the deterministic output path for one language of name.
func (c *Controller) OutputName(adapter format.Adapter, l lang.Language, name string) string {
	key := l.Code
	if c.cfg.Naming == NamingName {
		key = strings.ToLower(l.Name)
	}
	return c.OutputDir(adapter) + "/" + key + "_" + path.Base(name)
}

func (c *Controller) outputBucket(t Trigger) string {
	if c.cfg.OutputBucket != "" {
		return c.cfg.OutputBucket
	}
	return t.Bucket
}

// State reads the job state from the markers in the input bucket.
func (c *Controller) State(ctx context.Context, t Trigger) (State, error) {
	done, err := c.store.Exists(ctx, t.Bucket, DoneMarker(t.Name))
	if err != nil {
		return "", fmt.Errorf("check done marker: %w", err)
	}
	if done {
		return StateDone, nil
	}
	claimed, err := c.store.Exists(ctx, t.Bucket, ClaimMarker(t.Name))
	if err != nil {
		return "", fmt.Errorf("check claim marker: %w", err)
	}
	if claimed {
		return StateClaimed, nil
	}
	return StateAbsent, nil
}

// Handle processes one trigger. Filtered, finished and already-claimed
// jobs return without writing anything. A returned error means the run
// failed and was rolled back: the claim is released, outputs written so
// far are removed and the job is absent again.
func (c *Controller) Handle(ctx context.Context, t Trigger) (Outcome, error) {
	log := c.log.With().Str("object", t.Name).Str("bucket", t.Bucket).Logger()

	if !strings.HasPrefix(t.Name, c.cfg.InputPrefix) {
		log.Debug().Str("prefix", c.cfg.InputPrefix).Msg("outside input prefix, ignoring")
		return OutcomeIgnored, nil
	}
	adapter, ok := format.ForName(t.Name)
	if !ok {
		log.Debug().Msg("unsupported extension, ignoring")
		return OutcomeIgnored, nil
	}

	state, err := c.State(ctx, t)
	if err != nil {
		return OutcomeFailed, err
	}
	switch state {
	case StateDone:
		log.Info().Msg("already processed, skipping")
		return OutcomeAlreadyDone, nil
	case StateClaimed:
		log.Info().Msg("already being processed, skipping")
		return OutcomeAlreadyClaimed, nil
	}

	err = c.store.CreateIfAbsent(ctx, t.Bucket, ClaimMarker(t.Name), []byte("processing"), markerContentType)
	if errors.Is(err, storage.ErrExists) {
		log.Info().Msg("claimed by a concurrent run, skipping")
		return OutcomeAlreadyClaimed, nil
	}
	if err != nil {
		return OutcomeFailed, fmt.Errorf("claim %s: %w", t.Name, err)
	}

	// A run that finished between our state check and the claim has already
	// written done and released its own claim.
	done, err := c.store.Exists(ctx, t.Bucket, DoneMarker(t.Name))
	if err != nil || done {
		if derr := c.store.Delete(ctx, t.Bucket, ClaimMarker(t.Name)); derr != nil {
			log.Warn().Err(derr).Msg("failed to release claim")
		}
		if err != nil {
			return OutcomeFailed, fmt.Errorf("check done marker: %w", err)
		}
		log.Info().Msg("finished by a concurrent run, skipping")
		return OutcomeAlreadyDone, nil
	}

	runID := uuid.NewString()
	log = log.With().Str("run", runID).Logger()
	log.Info().Str("format", adapter.Family()).Msg("job claimed")

	start := time.Now()
	r := &run{Controller: c, trigger: t, adapter: adapter, log: log}
	if err := r.execute(ctx); err != nil {
		r.rollback(context.WithoutCancel(ctx))
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("job failed, rolled back")
		return OutcomeFailed, err
	}

	log.Info().Int("outputs", len(r.written)).Dur("elapsed", time.Since(start)).Msg("job done")
	return OutcomeProcessed, nil
}

// run is one claimed execution of a job.
type run struct {
	*Controller
	trigger Trigger
	adapter format.Adapter
	log     zerolog.Logger
	written []string
}

func (r *run) execute(ctx context.Context) error {
	t := r.trigger

	data, err := r.store.Read(ctx, t.Bucket, t.Name)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	result, err := r.translator.Translate(ctx, string(data), r.adapter)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	outBucket := r.outputBucket(t)
	for _, doc := range result.Documents {
		name := r.OutputName(r.adapter, doc.Language, t.Name)
		if err := r.store.Write(ctx, outBucket, name, []byte(doc.Body), r.adapter.ContentType()); err != nil {
			return fmt.Errorf("write %s output: %w", doc.Language.Code, err)
		}
		r.written = append(r.written, name)
		r.log.Info().Str("language", doc.Language.Code).Str("path", outBucket+"/"+name).Msg("uploaded translation")
	}

	if err := r.removeStrayMarkers(ctx, outBucket); err != nil {
		return err
	}

	// done goes first so the job never looks absent between the two writes.
	if err := r.store.Write(ctx, t.Bucket, DoneMarker(t.Name), []byte("done"), markerContentType); err != nil {
		return fmt.Errorf("write done marker: %w", err)
	}
	if err := r.store.Delete(ctx, t.Bucket, ClaimMarker(t.Name)); err != nil && !errors.Is(err, storage.ErrNotExist) {
		r.log.Warn().Err(err).Msg("failed to release claim after completion")
	}
	return nil
}

// removeStrayMarkers deletes marker objects left under the output
// directory by earlier partial runs.
func (r *run) removeStrayMarkers(ctx context.Context, bucket string) error {
	prefix := r.OutputDir(r.adapter) + "/"
	names, err := r.store.List(ctx, bucket, prefix)
	if err != nil {
		return fmt.Errorf("list output dir: %w", err)
	}
	for _, name := range names {
		if !strings.HasSuffix(name, doneSuffix) && !strings.HasSuffix(name, claimSuffix) {
			continue
		}
		if err := r.store.Delete(ctx, bucket, name); err != nil && !errors.Is(err, storage.ErrNotExist) {
			return fmt.Errorf("delete stray marker %s: %w", name, err)
		}
		r.log.Info().Str("path", bucket+"/"+name).Msg("deleted stray marker")
	}
	return nil
}

// rollback returns the job to absent. It is best effort: failures are
// logged and the next trigger retries.
func (r *run) rollback(ctx context.Context) {
	t := r.trigger
	outBucket := r.outputBucket(t)
	for _, name := range r.written {
		if err := r.store.Delete(ctx, outBucket, name); err != nil && !errors.Is(err, storage.ErrNotExist) {
			r.log.Warn().Err(err).Str("path", outBucket+"/"+name).Msg("failed to remove partial output")
		}
	}
	if err := r.store.Delete(ctx, t.Bucket, ClaimMarker(t.Name)); err != nil && !errors.Is(err, storage.ErrNotExist) {
		r.log.Warn().Err(err).Msg("failed to release claim")
	}
}
