// Package product implements Simplex's product driver (spec.md §4.6): for
// each selected produce block it evaluates the block's expressions in a
// fresh child environment, partitions the resulting values by runtime kind,
// and writes the STL/text/structured-dump output files a product's name
// implies. It has no teacher analogue (DWScript has no notion of a named
// export block); it is grounded on the shape of the teacher's
// cmd/dwscript/cmd/run.go output-writing tail (evaluate, then write files,
// checking and reporting each I/O error) and renders its `.twist` dump
// through goccy/go-yaml, the structured-serialization library already in
// the teacher's dependency graph (transitively, via go-snaps).
package product

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/markchucarroll/simplex/internal/ast"
	"github.com/markchucarroll/simplex/internal/environment"
	"github.com/markchucarroll/simplex/internal/evaluator"
	"github.com/markchucarroll/simplex/internal/kernel"
	"github.com/markchucarroll/simplex/internal/value"
)

// Options configures a driver run.
type Options struct {
	// Prefix is prepended to every output filename as "<prefix>-<product>.ext".
	Prefix string
	// Products, if non-empty, restricts execution to the named produce
	// blocks; an unknown name is an error. Empty means "run them all".
	Products []string
	// Verbosity follows spec.md §6: 0 silent, 1 default (one line per
	// written file), 2 adds per-product value counts, 3 traces every value.
	Verbosity int
}

// Run executes the selected products of mod against the already-evaluated
// module environment global, writing output files under dir. It returns the
// first evaluation error encountered, at which point (per spec.md §7) the
// current product is abandoned but the process is not otherwise aborted by
// this function — the caller decides whether to stop after an error.
func Run(mod *ast.Module, ev *evaluator.Evaluator, global *environment.Environment, dir string, opts Options) error {
	selected, err := selectProducts(mod.Products, opts.Products)
	if err != nil {
		return err
	}
	for _, prod := range selected {
		if err := runOne(prod, ev, global, dir, opts); err != nil {
			return fmt.Errorf("product %q: %w", prod.Name, err)
		}
	}
	return nil
}

func selectProducts(all []*ast.Product, names []string) ([]*ast.Product, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]*ast.Product, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}
	out := make([]*ast.Product, 0, len(names))
	for _, n := range names {
		p, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("no such product: %s (available: %s)", n, strings.Join(sortedProductNames(all), ", "))
		}
		out = append(out, p)
	}
	return out, nil
}

func runOne(prod *ast.Product, ev *evaluator.Evaluator, global *environment.Environment, dir string, opts Options) error {
	scope := environment.NewEnclosed(global)

	var solids []*value.Solid
	var texts []*value.Str
	var rest []value.Value

	for _, expr := range prod.Body {
		v, err := ev.Eval(expr, scope)
		if err != nil {
			return err
		}
		if opts.Verbosity >= 3 {
			fmt.Fprintf(os.Stderr, "  %s => %s\n", expr.Pos(), v.String())
		}
		switch vv := v.(type) {
		case *value.Solid:
			solids = append(solids, vv)
		case *value.Str:
			texts = append(texts, vv)
		default:
			rest = append(rest, vv)
		}
	}

	if opts.Verbosity >= 2 {
		fmt.Fprintf(os.Stderr, "product %q: %d solid(s), %d text value(s), %d other value(s)\n",
			prod.Name, len(solids), len(texts), len(rest))
	}

	base := fmt.Sprintf("%s-%s", opts.Prefix, prod.Name)

	if len(solids) > 0 {
		if err := writeSTL(dir, base, solids); err != nil {
			return err
		}
		if opts.Verbosity >= 1 {
			fmt.Fprintf(os.Stderr, "wrote %s.stl\n", base)
		}
	}
	if len(texts) > 0 {
		if err := writeTxt(dir, base, texts); err != nil {
			return err
		}
		if opts.Verbosity >= 1 {
			fmt.Fprintf(os.Stderr, "wrote %s.txt\n", base)
		}
	}
	if len(rest) > 0 {
		if err := writeTwist(dir, base, rest); err != nil {
			return err
		}
		if opts.Verbosity >= 1 {
			fmt.Fprintf(os.Stderr, "wrote %s.twist\n", base)
		}
	}
	return nil
}

// writeSTL unions every solid in evaluation order (spec.md §4.6 step 3) and
// writes the result atomically (write to a temp file, then rename, per
// spec.md §5's "write-then-rename" recommendation).
func writeSTL(dir, base string, solids []*value.Solid) error {
	meshes := make([]*kernel.Mesh, len(solids))
	for i, s := range solids {
		m, ok := s.Handle.(*kernel.Mesh)
		if !ok {
			return fmt.Errorf("solid value has no mesh handle")
		}
		meshes[i] = m
	}
	merged := kernel.Union(meshes...)
	return atomicWrite(dir, base+".stl", func(f *os.File) error {
		return kernel.WriteSTL(f, merged, base)
	})
}

func writeTxt(dir, base string, texts []*value.Str) error {
	var sb strings.Builder
	for i, t := range texts {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(t.Value)
	}
	return atomicWrite(dir, base+".txt", func(f *os.File) error {
		_, err := f.WriteString(sb.String())
		return err
	})
}

func writeTwist(dir, base string, values []value.Value) error {
	items := make(yaml.MapSlice, len(values))
	for i, v := range values {
		items[i] = yaml.MapItem{Key: fmt.Sprintf("value%d", i), Value: toTwist(v)}
	}
	out, err := yaml.MarshalWithOptions(items, yaml.Indent(2))
	if err != nil {
		return err
	}
	return atomicWrite(dir, base+".twist", func(f *os.File) error {
		_, err := f.Write(out)
		return err
	})
}

// toTwist converts a runtime Value into the plain-Go shape goccy/go-yaml
// renders deterministically: scalars as themselves, vectors as sequences,
// records as ordered (field-declaration-order) maps via yaml.MapSlice.
func toTwist(v value.Value) any {
	switch vv := v.(type) {
	case *value.Int:
		return vv.Value
	case *value.Float:
		return vv.Value
	case *value.Str:
		return vv.Value
	case *value.Bool:
		return vv.Value
	case *value.None:
		return nil
	case *value.Vec2:
		return []float64{vv.X, vv.Y}
	case *value.Vec3:
		return []float64{vv.X, vv.Y, vv.Z}
	case *value.Vector:
		out := make([]any, len(vv.Elements))
		for i, e := range vv.Elements {
			out[i] = toTwist(e)
		}
		return out
	case *value.Record:
		items := make(yaml.MapSlice, len(vv.Fields))
		for i, f := range vv.Fields {
			items[i] = yaml.MapItem{Key: vv.FieldNames[i], Value: toTwist(f)}
		}
		return yaml.MapSlice{{Key: "type", Value: vv.TypeName}, {Key: "fields", Value: items}}
	case *value.BoundingBox:
		return yaml.MapSlice{
			{Key: "low", Value: []float64{vv.LowX, vv.LowY, vv.LowZ}},
			{Key: "high", Value: []float64{vv.HighX, vv.HighY, vv.HighZ}},
		}
	case *value.BoundingRect:
		return yaml.MapSlice{
			{Key: "low", Value: []float64{vv.LowX, vv.LowY}},
			{Key: "high", Value: []float64{vv.HighX, vv.HighY}},
		}
	case *value.PolygonValue:
		pts := make([][]float64, len(vv.Points))
		for i, p := range vv.Points {
			pts[i] = []float64{p.X, p.Y}
		}
		return yaml.MapSlice{{Key: "polygon", Value: pts}}
	case *value.SliceValue:
		return vv.Summary
	case *value.Solid:
		return vv.Summary
	default:
		return v.String()
	}
}

// atomicWrite writes to "<name>.tmp" in dir, then renames over name, so a
// crash mid-write never leaves a half-written product file (spec.md §5).
func atomicWrite(dir, name string, write func(f *os.File) error) error {
	path := dir + string(os.PathSeparator) + name
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// sortedProductNames returns the names of products sorted alphabetically,
// used by selectProducts to report "--products" validation errors with a
// stable, deterministic list.
func sortedProductNames(all []*ast.Product) []string {
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}
