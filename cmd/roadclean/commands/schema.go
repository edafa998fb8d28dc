package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/roadclean/pkg/roadclean"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the column schema of the cleaned table",
	Long: `Print the columns of the cleaned table with their types,
descriptions and validation rules.

Examples:
  roadclean schema
  roadclean schema --format jsonschema > road_deaths.schema.json`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().String("format", "yaml", "output format: yaml, json, jsonschema")
}

func runSchema(cmd *cobra.Command, args []string) error {
	initLogger(cmd)

	s := roadclean.New().Schema()
	out := cmd.OutOrStdout()

	formatStr, _ := cmd.Flags().GetString("format")
	switch formatStr {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		return writeJSON(cmd, s)
	case "jsonschema":
		return writeJSON(cmd, s.ToJSONSchema())
	default:
		return fmt.Errorf("unsupported schema format: %s (use yaml, json or jsonschema)", formatStr)
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
