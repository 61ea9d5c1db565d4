// Package config loads docutran settings from flags, DOCUTRAN_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/valpere/docutran/internal/lang"
)

const EnvPrefix = "DOCUTRAN"

// Keys understood by Load.
const (
	KeyInputPrefix     = "input_prefix"
	KeyOutputPrefix    = "output_prefix"
	KeyOutputBucket    = "output_bucket"
	KeyStorage         = "storage"
	KeyFSRoot          = "fs_root"
	KeyLanguages       = "languages"
	KeyTranslator      = "translator"
	KeyOllamaURL       = "ollama_url"
	KeyOllamaModel     = "ollama_model"
	KeyOpenRouterKey   = "openrouter_key"
	KeyOpenRouterModel = "openrouter_model"
	KeyCredentials     = "credentials"
	KeyDB              = "db"
	KeyWorkers         = "workers"
	KeyListen          = "listen"
	KeyOutputNaming    = "output_naming"
	KeyMaxAttempts     = "max_attempts"
	KeyTimeout         = "timeout"
)

type Config struct {
	InputPrefix  string `key:"input_prefix"`
	OutputPrefix string `key:"output_prefix"`
	OutputBucket string `key:"output_bucket"`

	Storage string `key:"storage" validate:"oneof=gcs fs"`
	FSRoot  string `key:"fs_root" validate:"required_if=Storage fs"`

	Languages []lang.Language `key:"languages"`

	Translator      string `key:"translator" validate:"oneof=ollama openrouter google"`
	OllamaURL       string `key:"ollama_url" validate:"omitempty,url"`
	OllamaModel     string `key:"ollama_model"`
	OpenRouterKey   string `key:"openrouter_key" validate:"required_if=Translator openrouter"`
	OpenRouterModel string `key:"openrouter_model"`
	Credentials     string `key:"credentials"`

	// MaxAttempts and Timeout apply to each chunk translation call.
	MaxAttempts int           `key:"max_attempts" validate:"min=1"`
	Timeout     time.Duration `key:"timeout" validate:"gte=0"`

	// DB is the translation memory path; empty disables it.
	DB      string `key:"db"`
	Workers int    `key:"workers" validate:"gte=0"`
	Listen  string `key:"listen"`

	OutputNaming string `key:"output_naming" validate:"oneof=code name"`
}

// validate reports field errors under their config key names.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if key := fld.Tag.Get("key"); key != "" {
			return key
		}
		return fld.Name
	})
	return v
}()

// New returns a viper instance with defaults and environment binding in
// place. Callers bind flags and read a config file on top.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyInputPrefix, "uploads/")
	v.SetDefault(KeyOutputPrefix, "translations/")
	v.SetDefault(KeyOutputBucket, "")
	v.SetDefault(KeyStorage, "gcs")
	v.SetDefault(KeyFSRoot, "./data/buckets")
	v.SetDefault(KeyLanguages, strings.Join(lang.DefaultCodes, ","))
	v.SetDefault(KeyTranslator, "ollama")
	v.SetDefault(KeyOllamaURL, "http://localhost:11434")
	v.SetDefault(KeyOllamaModel, "")
	v.SetDefault(KeyOpenRouterKey, "")
	v.SetDefault(KeyOpenRouterModel, "")
	v.SetDefault(KeyCredentials, "")
	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyListen, ":8080")
	v.SetDefault(KeyOutputNaming, "code")
	v.SetDefault(KeyMaxAttempts, 1)
	v.SetDefault(KeyTimeout, "0s")
	return v
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		InputPrefix:     v.GetString(KeyInputPrefix),
		OutputPrefix:    v.GetString(KeyOutputPrefix),
		OutputBucket:    v.GetString(KeyOutputBucket),
		Storage:         strings.ToLower(v.GetString(KeyStorage)),
		FSRoot:          v.GetString(KeyFSRoot),
		Translator:      strings.ToLower(v.GetString(KeyTranslator)),
		OllamaURL:       v.GetString(KeyOllamaURL),
		OllamaModel:     v.GetString(KeyOllamaModel),
		OpenRouterKey:   v.GetString(KeyOpenRouterKey),
		OpenRouterModel: v.GetString(KeyOpenRouterModel),
		Credentials:     v.GetString(KeyCredentials),
		MaxAttempts:     v.GetInt(KeyMaxAttempts),
		Timeout:         v.GetDuration(KeyTimeout),
		DB:              v.GetString(KeyDB),
		Workers:         v.GetInt(KeyWorkers),
		Listen:          v.GetString(KeyListen),
		OutputNaming:    strings.ToLower(v.GetString(KeyOutputNaming)),
	}

	codes := splitList(v.GetStringSlice(KeyLanguages))
	if len(codes) == 0 {
		return Config{}, fmt.Errorf("%s: at least one target language is required", KeyLanguages)
	}
	langs, err := lang.ParseList(codes)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyLanguages, err)
	}
	cfg.Languages = langs

	if err := validate.Struct(cfg); err != nil {
		return Config{}, validationError(err)
	}

	// Outputs written next to the inputs must not match the input filter.
	if cfg.OutputBucket == "" && strings.HasPrefix(cfg.OutputPrefix, cfg.InputPrefix) {
		return Config{}, fmt.Errorf("%s %q lies under %s %q in the input bucket: set %s or use disjoint prefixes",
			KeyOutputPrefix, cfg.OutputPrefix, KeyInputPrefix, cfg.InputPrefix, KeyOutputBucket)
	}

	return cfg, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			want := strings.Join(strings.Fields(fe.Param()), ", ")
			errs = append(errs, fmt.Errorf("%s: unknown value %q (want one of %s)", fe.Field(), fe.Value(), want))
		case "required_if":
			cond := strings.Fields(fe.Param())
			errs = append(errs, fmt.Errorf("%s is required when %s is %s", fe.Field(), strings.ToLower(cond[0]), cond[1]))
		case "min", "gte":
			errs = append(errs, fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param()))
		case "url":
			errs = append(errs, fmt.Errorf("%s: %q is not a valid URL", fe.Field(), fe.Value()))
		default:
			errs = append(errs, fmt.Errorf("%s: invalid value %v", fe.Field(), fe.Value()))
		}
	}
	return errors.Join(errs...)
}

// splitList accepts both repeated values and comma-separated strings, as
// produced by flags and environment variables respectively.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
