// Package cmd implements simplex's cobra-based CLI front end (spec.md §6),
// grounded on the teacher's cmd/dwscript/cmd package: a root command that
// carries version metadata and a --verbosity flag, plus a
// version subcommand, with the actual work done by the root command's own
// RunE rather than a `run` subcommand — Simplex's CLI has no lexer/parser/
// formatter debug commands of its own, only the one "build a model" action.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags, following the teacher's
	// convention).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	prefixFlag    string
	productsFlag  []string
	verbosityFlag int
	dumpASTFlag   bool
	traceFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "simplex MODEL.s3d",
	Short: "Simplex compiler and geometry driver",
	Long: `simplex compiles a Simplex (.s3d) source file and runs its produce
blocks, writing up to one STL, one text and one structured-dump file per
selected product (a file only for each non-empty group).

Simplex is a statically typed, expression-oriented language for describing
3D-printable solids: every produce block's expressions are evaluated, their
values are partitioned by kind, and the result is written as
<prefix>-<product>.stl / .txt / .twist.`,
	Version: Version,
	Args:    cobra.ExactArgs(1),
	RunE:    runModel,
}

// Execute runs the root command and returns the exit code spec.md §6
// assigns to the outcome: 0 success, 1 parse error, 2 analysis error,
// 3 runtime error, 4 I/O error.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if ec, ok := err.(exitCoder); ok {
			return ec.ExitCode()
		}
		return 1
	}
	return 0
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.Flags().StringVar(&prefixFlag, "prefix", "", "output filename prefix (default: <model-basename>-out)")
	rootCmd.Flags().StringSliceVar(&productsFlag, "products", nil, "comma-separated list of products to run (default: all)")
	rootCmd.Flags().IntVar(&verbosityFlag, "verbosity", 1, "0 silent, 1 default, 2 analyzer traces, 3 per-expression traces")
	rootCmd.Flags().BoolVar(&dumpASTFlag, "dump-ast", false, "dump the parsed AST before evaluation")
	rootCmd.Flags().BoolVar(&traceFlag, "trace", false, "alias for --verbosity=3")
}

// exitCoder lets a command's returned error carry a specific process exit
// code instead of the generic failure code 1, without cobra itself knowing
// about spec.md's exit-code taxonomy.
type exitCoder interface {
	error
	ExitCode() int
}

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) ExitCode() int { return e.code }
func (e *cliError) Unwrap() error { return e.err }

func fail(code int, err error) error { return &cliError{code: code, err: err} }
