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

	"github.com/valpere/docutran/internal/job"
)

var (
	objectName string
	bucketName string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Process one uploaded object",
	Long: `Run the translation job for a single object, exactly as if a storage
event for it had arrived.

The object is skipped when it lies outside the input prefix, has an
unsupported extension, or has already been claimed or finished.

Example:
  docutran translate --storage fs --fs-root ./data --bucket in --object uploads/talk.srt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		outcome, err := a.controller.Handle(ctx, job.Trigger{Name: objectName, Bucket: bucketName})
		if err != nil {
			return fmt.Errorf("translation job failed: %w", err)
		}
		fmt.Printf("%s: %s\n", objectName, outcome)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&objectName, "object", "", "Object name, e.g. uploads/talk.srt (required)")
	translateCmd.Flags().StringVar(&bucketName, "bucket", "", "Bucket holding the object (required)")

	translateCmd.MarkFlagRequired("object")
	translateCmd.MarkFlagRequired("bucket")
}
