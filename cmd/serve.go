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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/docutran/internal/config"
	"github.com/valpere/docutran/internal/trigger"
)

var shutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive storage events over HTTP",
	Long: `Start an HTTP server that accepts storage events on POST / and runs the
translation job for the named object.

The body is either {"name": "...", "bucket": "..."} or a structured
CloudEvent carrying those fields under "data". A 5xx response asks the
event source to redeliver; skipped and finished objects answer 204.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		httpLog := log.With().Str("component", "http").Logger()
		srv := trigger.NewServer(a.cfg.Listen, trigger.NewRouter(a.controller, httpLog), httpLog)
		return srv.Run(ctx, shutdownTimeout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Minute, "Time allowed for in-flight jobs on shutdown")

	if err := v.BindPFlag(config.KeyListen, serveCmd.Flags().Lookup("listen")); err != nil {
		panic(err)
	}
}
