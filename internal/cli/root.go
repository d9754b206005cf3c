// Package cli provides the intelliplanctl command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/intelliplan-api/pkg/logger"
)

// Version is set at build time.
var Version = "0.1.0"

type globalOptions struct {
	verbose bool
	json    bool
}

func (o *globalOptions) logger() *zap.Logger {
	return logger.NewConsole(o.verbose)
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "intelliplanctl",
		Short: "Generate clash-free course timetables from an enrollment export",
		Long: `intelliplanctl reads a course enrollment export (CSV or XLSX), enumerates every
conflict-free timetable for the chosen courses and narrows them with plain-English
constraints such as "no classes on Friday" or "nothing before 9am".`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log catalog parsing details to stderr")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of text")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newDetectCmd(opts))
	root.AddCommand(newCoursesCmd(opts))
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func writeJSON(w io.Writer, value interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
