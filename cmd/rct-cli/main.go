// cmd/rct-cli/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go-call-tracker/internal/algos"
	"go-call-tracker/internal/config"
	"go-call-tracker/internal/runner"
	"go-call-tracker/internal/source"
	"go-call-tracker/internal/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "rct-cli",
		Short:        "Record and print the call trees of recursive algorithms",
		SilenceUsage: true,
	}
	root.AddCommand(newListCmd(), newTraceCmd(cfg), newSourceCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the algorithms that can be traced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, a := range algos.All() {
				fmt.Fprintf(out, "%-10s (%s)  %s\n", a.Name, strings.Join(a.Params, ", "), a.Summary)
			}
			return nil
		},
	}
}

func newTraceCmd(cfg config.Config) *cobra.Command {
	var (
		indent     int
		goroutines int
		asJSON     bool
		outputFile string
	)
	cmd := &cobra.Command{
		Use:   "trace <algorithm> [args...]",
		Short: "Run an algorithm with call tracking and print its call tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tracer.CheckIndent(indent); err != nil {
				return err
			}

			// --- Parse Arguments ---
			callArgs, err := runner.ParseArgs(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			// --- Run ---
			trace, err := runner.Run(context.Background(), args[0], callArgs, goroutines)
			if err != nil {
				return err
			}

			// --- Render ---
			var report []byte
			if asJSON {
				if report, err = trace.JSON(); err != nil {
					return err
				}
				report = append(report, '\n')
			} else {
				report = []byte(trace.Text(indent))
			}

			// --- Write Report ---
			if outputFile == "" || outputFile == "-" {
				_, err = cmd.OutOrStdout().Write(report)
				return err
			}
			if err := os.WriteFile(outputFile, report, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Trace complete. Results written to %s\n", outputFile)
			return nil
		},
	}
	cmd.Flags().IntVar(&indent, "indent", cfg.Indent, "indent width of the call tree")
	cmd.Flags().IntVarP(&goroutines, "goroutines", "g", 1, "number of goroutines calling the algorithm")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a flat JSON export instead of the tree")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the result to this file instead of stdout")
	return cmd
}

func newSourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "source <algorithm>",
		Short: "Print the Go source of an algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := algos.Lookup(args[0])
			if err != nil {
				return err
			}
			loc, code, err := source.Of(a.Impl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "// %s (%s:%d)\n%s\n", loc.Name, loc.File, loc.Line, code)
			return nil
		},
	}
}
