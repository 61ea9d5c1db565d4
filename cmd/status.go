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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valpere/docutran/internal/format"
	"github.com/valpere/docutran/internal/job"
)

var statusCmd = &cobra.Command{
	Use:   "status <object>",
	Short: "Show the job state of an object",
	Long: `Print whether the object's job is absent, claimed or done, and the
output paths it maps to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newInspectApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		t := job.Trigger{Name: args[0], Bucket: bucketName}
		state, err := a.controller.State(ctx, t)
		if err != nil {
			return fmt.Errorf("failed to read job state: %w", err)
		}
		fmt.Printf("State: %s\n", state)

		adapter, ok := format.ForName(t.Name)
		if !ok {
			fmt.Println("Unsupported extension: no outputs")
			return nil
		}
		for _, l := range a.cfg.Languages {
			fmt.Printf("  %-10s %s\n", l.Name, a.controller.OutputName(adapter, l, t.Name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&bucketName, "bucket", "", "Bucket holding the object (required)")
	statusCmd.MarkFlagRequired("bucket")
}
