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
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/valpere/docutran/internal/config"
	"github.com/valpere/docutran/internal/logger"
)

var version = "0.1.0"

var (
	cfgFile string
	envFile string

	v   = config.New()
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "docutran",
	Short: "Document translation worker",
	Long: `A worker that translates uploaded documents (.txt, .srt, .json) into a
configured set of languages and writes one output per language.

Each input is processed at most once: marker objects next to the input
record whether a run has claimed or finished it.

Use "docutran serve" to receive storage events over HTTP, or
"docutran translate --object <name> --bucket <bucket>" for a single run.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Variables already set in the environment win over the file.
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load env file: %w", err)
			}
		}
		log = logger.New(logger.FromEnv())
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	flags.StringVar(&envFile, "env-file", ".env", "Dotenv file with DOCUTRAN_* and LOG_* variables, skipped if missing")

	flags.String("input-prefix", "uploads/", "Only objects under this prefix are processed")
	flags.String("output-prefix", "translations/", "Prefix for output directories")
	flags.String("output-bucket", "", "Bucket for outputs (default: the input bucket)")
	flags.String("output-naming", "code", "Language key in output names: code or name")
	flags.String("storage", "gcs", "Storage backend: gcs or fs")
	flags.String("fs-root", "./data/buckets", "Root directory for the fs backend, one subdirectory per bucket")
	flags.StringSlice("languages", []string{"en", "ar", "ja"}, "Target language codes")
	flags.String("translator", "ollama", "Translation service: ollama, openrouter or google")
	flags.String("ollama-url", "http://localhost:11434", "Ollama base URL")
	flags.String("ollama-model", "", "Ollama model (default llama3.2)")
	flags.String("openrouter-key", "", "OpenRouter API key")
	flags.String("openrouter-model", "", "OpenRouter model")
	flags.StringP("credentials", "c", "", "Path to Google Cloud credentials")
	flags.String("db", "", "Translation memory database path (empty disables it)")
	flags.Int("workers", 0, "Concurrent chunk translations (0 = max(8, 2 x CPUs))")
	flags.Int("max-attempts", 1, "Attempts per chunk translation, including the first")
	flags.Duration("timeout", 0, "Timeout per chunk translation attempt (0 = none)")

	for key, name := range map[string]string{
		config.KeyInputPrefix:     "input-prefix",
		config.KeyOutputPrefix:    "output-prefix",
		config.KeyOutputBucket:    "output-bucket",
		config.KeyOutputNaming:    "output-naming",
		config.KeyStorage:         "storage",
		config.KeyFSRoot:          "fs-root",
		config.KeyLanguages:       "languages",
		config.KeyTranslator:      "translator",
		config.KeyOllamaURL:       "ollama-url",
		config.KeyOllamaModel:     "ollama-model",
		config.KeyOpenRouterKey:   "openrouter-key",
		config.KeyOpenRouterModel: "openrouter-model",
		config.KeyCredentials:     "credentials",
		config.KeyDB:              "db",
		config.KeyWorkers:         "workers",
		config.KeyMaxAttempts:     "max-attempts",
		config.KeyTimeout:         "timeout",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
