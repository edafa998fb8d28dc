// Package commands implements the CLI commands for roadclean.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/roadclean/internal/logger"
	"github.com/jmylchreest/roadclean/internal/output"
	"github.com/jmylchreest/roadclean/internal/version"
	"github.com/jmylchreest/roadclean/pkg/roadclean"
)

var rootCmd = &cobra.Command{
	Use:   "roadclean",
	Short: "Clean the WHO road traffic deaths CSV export",
	Long: `Roadclean turns the WHO road traffic deaths export into a typed table.

It drops the sex-category label row, renames the columns to
Country, Year, Deaths_Both, Deaths_Male, Deaths_Female, Rate_Both,
Rate_Male, Rate_Female, keeps the point estimate of every
"value [low-high]" cell, and writes the result with a header row.

Examples:
  # Clean who_road_deaths.csv into road_deaths_full_cleaned.csv
  roadclean

  # Explicit paths
  roadclean -i export.csv -o cleaned.csv

  # Load the cleaned table into SQLite
  roadclean -o deaths.db -f sqlite

  # Stream JSONL to another tool
  roadclean -o - -f jsonl | jq .country`,
	Version:       version.String(),
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	RunE:          runClean,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.roadclean.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))

	flags := rootCmd.Flags()
	flags.StringP("input", "i", roadclean.DefaultInput, "input CSV export")
	flags.StringP("output", "o", roadclean.DefaultOutput, "output file ('-' for stdout)")
	flags.StringP("format", "f", string(output.FormatCSV), "output format: csv, json, jsonl, yaml, sqlite")
	flags.String("table", output.DefaultTable, "table name for sqlite output")
	flags.Int("skip-rows", 1, "data rows to discard after the header")
	flags.Bool("no-validate", false, "skip non-negative checks on cleaned records")
	flags.Bool("stats", false, "print a cleaning summary to stderr")

	_ = viper.BindPFlag("input", flags.Lookup("input"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("table", flags.Lookup("table"))
	_ = viper.BindPFlag("skip_rows", flags.Lookup("skip-rows"))
	_ = viper.BindPFlag("no_validate", flags.Lookup("no-validate"))
	_ = viper.BindPFlag("stats", flags.Lookup("stats"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".roadclean")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("ROADCLEAN")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error("command failed", "error", err)
	}
	return err
}

func initLogger(cmd *cobra.Command) {
	logger.Init(logger.Options{
		Debug:  viper.GetBool("debug"),
		Quiet:  viper.GetBool("quiet"),
		JSON:   viper.GetBool("log_json"),
		Output: cmd.ErrOrStderr(),
	})
}

func runClean(cmd *cobra.Command, args []string) error {
	initLogger(cmd)
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	inPath := viper.GetString("input")
	outPath := viper.GetString("output")

	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	logger.Debug("clean command starting", "input", inPath, "output", outPath, "format", format)

	c := roadclean.New(
		roadclean.WithSkipRows(viper.GetInt("skip_rows")),
		roadclean.WithValidation(!viper.GetBool("no_validate")),
		roadclean.WithWriterOptions(output.WithTable(viper.GetString("table"))),
	)

	res, err := c.CleanFile(ctx, inPath, outPath, format)
	if err != nil {
		return err
	}

	if viper.GetBool("stats") {
		fmt.Fprint(cmd.ErrOrStderr(), res.Stats.String())
	}

	// Keep stdout clean when the data itself goes there
	var msgOut io.Writer = cmd.OutOrStdout()
	if outPath == output.Stdout {
		msgOut = cmd.ErrOrStderr()
	}
	if !viper.GetBool("quiet") {
		fmt.Fprintf(msgOut, "Data cleaned successfully and saved to '%s'.\n", outPath)
	}
	return nil
}
