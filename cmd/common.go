/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/valpere/docutran/internal/config"
	"github.com/valpere/docutran/internal/detector"
	"github.com/valpere/docutran/internal/dispatch"
	"github.com/valpere/docutran/internal/document"
	"github.com/valpere/docutran/internal/job"
	"github.com/valpere/docutran/internal/segment"
	"github.com/valpere/docutran/internal/storage"
	"github.com/valpere/docutran/internal/store"
	"github.com/valpere/docutran/internal/translator"
)

// app holds the process-wide collaborators. They are built once and shared
// by every job the process runs.
type app struct {
	cfg        config.Config
	controller *job.Controller
	closers    []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

func newApp(ctx context.Context) (*app, error) {
	a, st, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	cfg := a.cfg

	svc, err := a.buildService()
	if err != nil {
		a.Close()
		return nil, err
	}
	// Per-chunk failures degrade to the sentinel, so an unreachable backend
	// is reported but does not stop the worker from starting.
	if err := svc.IsAvailable(ctx); err != nil {
		log.Warn().Err(err).Str("translator", svc.Name()).Msg("translation service not available")
	}

	disp := dispatch.New(svc,
		dispatch.WithWorkers(cfg.Workers),
		dispatch.WithLogger(log.With().Str("component", "dispatch").Logger()),
	)
	doc := document.New(disp, detector.New(), segment.New(), cfg.Languages,
		log.With().Str("component", "document").Logger())
	a.controller = a.newController(st, doc)

	log.Info().
		Str("translator", svc.Name()).
		Str("storage", cfg.Storage).
		Int("workers", disp.Workers()).
		Strs("languages", languageCodes(cfg)).
		Msg("worker ready")
	return a, nil
}

// newInspectApp builds storage and a controller without a translation
// pipeline. Its controller serves State and OutputName only.
func newInspectApp(ctx context.Context) (*app, error) {
	a, st, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	a.controller = a.newController(st, nil)
	return a, nil
}

func openApp(ctx context.Context) (*app, storage.Storage, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	a := &app{cfg: cfg}

	st, err := a.buildStorage(ctx)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, st, nil
}

func (a *app) newController(st storage.Storage, tr job.Translator) *job.Controller {
	return job.New(st, tr, job.Config{
		InputPrefix:  a.cfg.InputPrefix,
		OutputPrefix: a.cfg.OutputPrefix,
		OutputBucket: a.cfg.OutputBucket,
		Naming:       job.Naming(a.cfg.OutputNaming),
	}, log.With().Str("component", "job").Logger())
}

// buildService constructs the configured translation backend, wrapped with
// retries and, when a database is configured, the translation memory.
func (a *app) buildService() (translator.TranslationService, error) {
	cfg := a.cfg

	var svc translator.TranslationService
	switch cfg.Translator {
	case "ollama":
		svc = translator.NewOllamaTranslator(cfg.OllamaURL, cfg.OllamaModel)
	case "openrouter":
		svc = translator.NewOpenRouterService(cfg.OpenRouterKey, "", cfg.OpenRouterModel)
	case "google":
		g := translator.NewGoogleService(cfg.Credentials)
		a.closers = append(a.closers, g.Close)
		svc = g
	default:
		return nil, fmt.Errorf("unknown translator: %s", cfg.Translator)
	}

	svc = translator.NewRetryService(svc, translator.RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  time.Second,
		Timeout:     cfg.Timeout,
	})

	if cfg.DB != "" {
		db, err := store.New(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		svc = translator.NewCachedService(svc, db, log.With().Str("component", "memory").Logger())
	}
	return svc, nil
}

func (a *app) buildStorage(ctx context.Context) (storage.Storage, error) {
	switch a.cfg.Storage {
	case "fs":
		return storage.NewFS(afero.NewOsFs(), a.cfg.FSRoot), nil
	case "gcs":
		g, err := storage.NewGCS(ctx, a.cfg.Credentials)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	default:
		return nil, fmt.Errorf("unknown storage: %s", a.cfg.Storage)
	}
}

func languageCodes(cfg config.Config) []string {
	codes := make([]string, len(cfg.Languages))
	for i, l := range cfg.Languages {
		codes[i] = l.Code
	}
	return codes
}
