package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markchucarroll/simplex/internal/errors"
	"github.com/markchucarroll/simplex/internal/evaluator"
	"github.com/markchucarroll/simplex/internal/lexer"
	"github.com/markchucarroll/simplex/internal/library"
	"github.com/markchucarroll/simplex/internal/parser"
	"github.com/markchucarroll/simplex/internal/product"
	"github.com/markchucarroll/simplex/internal/semantic"
	"github.com/markchucarroll/simplex/internal/types"
)

// Exit codes per spec.md §6: 0 success, 1 parse error, 2 type/analysis
// error, 3 runtime/evaluation error, 4 I/O error.
const (
	exitParseError = 1
	exitTypeError  = 2
	exitRuntime    = 3
	exitIOError    = 4
)

// runModel is the root command's only action: compile and run the one
// MODEL.s3d named on the command line. It is grounded on the shape of the
// teacher's runScript (read source, lex, parse, report parser errors,
// analyze, report analysis errors, evaluate, report runtime errors) but
// drives spec.md's product pipeline instead of a single top-level Eval.
func runModel(_ *cobra.Command, args []string) error {
	filename := args[0]
	src, err := os.ReadFile(filename)
	if err != nil {
		return fail(exitIOError, fmt.Errorf("reading %s: %w", filename, err))
	}

	prefix := prefixFlag
	if prefix == "" {
		base := filepath.Base(filename)
		prefix = strings.TrimSuffix(base, filepath.Ext(base)) + "-out"
	}
	verbosity := verbosityFlag
	if traceFlag && verbosity < 3 {
		verbosity = 3
	}

	lex := lexer.New(string(src), filename)
	p := parser.New(lex)
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		report(errors.Parser, errs, string(src), filename)
		return fail(exitParseError, fmt.Errorf("parsing failed with %d error(s)", len(errs)))
	}

	if dumpASTFlag {
		fmt.Println("AST:")
		fmt.Println(mod.String())
		fmt.Println()
	}

	store := types.NewStore()
	ana := semantic.New(store)

	loader := library.NewLoader(store, []string{filepath.Dir(filename)})
	ev := evaluator.New(store)
	if err := loader.LoadAll(mod, ana, ev); err != nil {
		return fail(exitTypeError, err)
	}

	ana.Analyze(mod)
	if errs := ana.Errors(); len(errs) > 0 {
		report(errors.Analysis, errs, string(src), filename)
		return fail(exitTypeError, fmt.Errorf("analysis failed with %d error(s)", len(errs)))
	}
	if verbosity >= 2 {
		fmt.Fprintf(os.Stderr, "analysis ok: %d definition(s), %d product(s)\n", len(mod.Definitions), len(mod.Products))
	}

	global, err := ev.EvalModule(mod)
	if err != nil {
		return fail(exitRuntime, err)
	}

	outDir := filepath.Dir(prefix)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fail(exitIOError, fmt.Errorf("creating output directory: %w", err))
	}

	opts := product.Options{
		Prefix:    filepath.Base(prefix),
		Products:  productsFlag,
		Verbosity: verbosity,
	}
	if err := product.Run(mod, ev, global, outDir, opts); err != nil {
		if isIOError(err) {
			return fail(exitIOError, err)
		}
		return fail(exitRuntime, err)
	}

	return nil
}

func report(kind errors.Kind, msgs []string, source, file string) {
	errs := errors.FromStrings(kind, msgs, source, file)
	fmt.Fprint(os.Stderr, errors.FormatErrors(errs, true))
	fmt.Fprintln(os.Stderr)
}

// isIOError distinguishes a product write failure (os file I/O) from an
// evaluation failure, so the two share product.Run's single error return
// while still mapping to distinct spec.md §6 exit codes.
func isIOError(err error) bool {
	var pathErr *os.PathError
	return asPathError(err, &pathErr)
}

func asPathError(err error, target **os.PathError) bool {
	for err != nil {
		if pe, ok := err.(*os.PathError); ok {
			*target = pe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
