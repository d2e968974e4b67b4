package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"metagrip/internal/domain"
	"metagrip/internal/logging"
	"metagrip/internal/ui/services/fields"
)

var (
	fieldsSchema string
	fieldsStage  string
	fieldsSelect string
)

// fieldsCmd lists the fields a schema-driven selector would offer
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the selectable fields of an input schema",
	Long: `Reads a stage output schema ({"fields":[{"name":...}]}) and prints the
field names a field selector offers, in order.

Example:
  metagrip fields --schema purchases.json --select price`,
	RunE: runFields,
}

func init() {
	fieldsCmd.Flags().StringVar(&fieldsSchema, "schema", "", "schema JSON file")
	fieldsCmd.Flags().StringVar(&fieldsStage, "stage", "input", "upstream stage name")
	fieldsCmd.Flags().StringVar(&fieldsSelect, "select", "", "validate a field choice")
	_ = fieldsCmd.MarkFlagRequired("schema")
}

func runFields(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(fieldsSchema)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	logger, err := logging.New(logging.Options{File: "-", Level: "warn", Verbose: verbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sel := fields.New([]domain.InputSchema{{Name: fieldsStage, Schema: string(data)}}, logger)

	out := cmd.OutOrStdout()
	for _, name := range sel.Options() {
		fmt.Fprintln(out, name)
	}

	if fieldsSelect != "" {
		if err := sel.Select(fieldsSelect); err != nil {
			return err
		}
		fmt.Fprintf(out, "selected: %s\n", sel.Value())
	}
	return nil
}
