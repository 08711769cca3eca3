package kernel

import (
	"bufio"
	"fmt"
	"io"
)

// WriteSTL writes m as an ASCII STL file, the format the product driver
// uses for every Solid value named in a produce block (spec.md §4.6).
func WriteSTL(w io.Writer, m *Mesh, name string) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "solid %s\n", name); err != nil {
		return err
	}
	for _, t := range m.Triangles {
		n := t.Normal()
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", n.X, n.Y, n.Z)
		fmt.Fprintln(bw, "    outer loop")
		fmt.Fprintf(bw, "      vertex %g %g %g\n", t.A.X, t.A.Y, t.A.Z)
		fmt.Fprintf(bw, "      vertex %g %g %g\n", t.B.X, t.B.Y, t.B.Z)
		fmt.Fprintf(bw, "      vertex %g %g %g\n", t.C.X, t.C.Y, t.C.Z)
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}
