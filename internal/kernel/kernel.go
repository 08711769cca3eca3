// Package kernel is Simplex's geometry backend: the triangle-mesh
// representation behind Solid values, the boolean/affine/extrusion/
// revolution operations spec.md §1 treats as an opaque external dependency,
// and the STL writer the product driver calls for solid output. spec.md
// explicitly scopes the "real" CSG kernel (exact boolean operations,
// robust slicing, a production mesh library) out of this project; this
// package is the minimal, self-contained stand-in the spec requires
// something to sit behind Solid/Slice/Polygon/BoundingBox values. It has
// no teacher analogue (DWScript has no geometry of any kind) and is
// grounded instead on spec.md §1's operation list directly.
package kernel

import "math"

// Vec3 is a bare 3D point/vector used internally by the mesh; it is a
// separate type from value.Vec3 so this package stays independent of the
// value/type system (internal/evaluator wraps kernel results into
// value.Solid/value.Vec2/etc).
type Vec3 struct{ X, Y, Z float64 }

// Vec2 is a bare 2D point used by polygons and slices.
type Vec2 struct{ X, Y float64 }

// Triangle is one facet of a Mesh, with vertices in counter-clockwise
// winding order (outward-facing normal by the right-hand rule).
type Triangle struct{ A, B, C Vec3 }

// Normal returns the triangle's outward unit normal.
func (t Triangle) Normal() Vec3 {
	ux, uy, uz := t.B.X-t.A.X, t.B.Y-t.A.Y, t.B.Z-t.A.Z
	vx, vy, vz := t.C.X-t.A.X, t.C.Y-t.A.Y, t.C.Z-t.A.Z
	nx, ny, nz := uy*vz-uz*vy, uz*vx-ux*vz, ux*vy-uy*vx
	length := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if length == 0 {
		return Vec3{}
	}
	return Vec3{nx / length, ny / length, nz / length}
}

// Mesh is a closed (or at least well-formed) triangle soup. All of
// internal/kernel's solid operations build, transform or combine Meshes.
type Mesh struct {
	Triangles []Triangle
}

// NewBox returns an axis-aligned box of the given dimensions, centered on
// the origin in X/Y and sitting on the Z=0 plane (print-bed convention).
func NewBox(w, d, h float64) *Mesh {
	x0, x1 := -w/2, w/2
	y0, y1 := -d/2, d/2
	z0, z1 := 0.0, h
	v := func(x, y, z float64) Vec3 { return Vec3{x, y, z} }
	corners := [8]Vec3{
		v(x0, y0, z0), v(x1, y0, z0), v(x1, y1, z0), v(x0, y1, z0),
		v(x0, y0, z1), v(x1, y0, z1), v(x1, y1, z1), v(x0, y1, z1),
	}
	faces := [6][4]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{1, 2, 6, 5}, // right
		{2, 3, 7, 6}, // back
		{3, 0, 4, 7}, // left
	}
	m := &Mesh{}
	for _, f := range faces {
		a, b, c, d := corners[f[0]], corners[f[1]], corners[f[2]], corners[f[3]]
		m.Triangles = append(m.Triangles, Triangle{a, b, c}, Triangle{a, c, d})
	}
	return m
}

// NewCylinder returns a cylinder of radius r and height h, standing on
// Z=0, approximated with the given number of side segments.
func NewCylinder(r, h float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	m := &Mesh{}
	top := Vec3{0, 0, h}
	bottom := Vec3{0, 0, 0}
	for i := 0; i < segments; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(segments)
		a1 := 2 * math.Pi * float64(i+1) / float64(segments)
		p0b := Vec3{r * math.Cos(a0), r * math.Sin(a0), 0}
		p1b := Vec3{r * math.Cos(a1), r * math.Sin(a1), 0}
		p0t := Vec3{p0b.X, p0b.Y, h}
		p1t := Vec3{p1b.X, p1b.Y, h}
		m.Triangles = append(m.Triangles,
			Triangle{bottom, p1b, p0b},
			Triangle{top, p0t, p1t},
			Triangle{p0b, p1b, p1t},
			Triangle{p0b, p1t, p0t},
		)
	}
	return m
}

// NewSphere returns a UV-sphere of radius r centered on the origin,
// approximated with the given number of latitude/longitude segments.
func NewSphere(r float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	rings := segments
	pt := func(lat, lon float64) Vec3 {
		return Vec3{
			r * math.Sin(lat) * math.Cos(lon),
			r * math.Sin(lat) * math.Sin(lon),
			r * math.Cos(lat),
		}
	}
	m := &Mesh{}
	for i := 0; i < rings; i++ {
		lat0 := math.Pi * float64(i) / float64(rings)
		lat1 := math.Pi * float64(i+1) / float64(rings)
		for j := 0; j < segments; j++ {
			lon0 := 2 * math.Pi * float64(j) / float64(segments)
			lon1 := 2 * math.Pi * float64(j+1) / float64(segments)
			p00 := pt(lat0, lon0)
			p01 := pt(lat0, lon1)
			p10 := pt(lat1, lon0)
			p11 := pt(lat1, lon1)
			m.Triangles = append(m.Triangles, Triangle{p00, p10, p11}, Triangle{p00, p11, p01})
		}
	}
	return m
}

// Union, Difference and Intersection stand in for true CSG boolean
// operations (out of scope per spec.md §1): they concatenate the operand
// meshes' triangles rather than computing an exact boolean result. This
// keeps every Solid-producing expression in a Simplex program evaluable
// without vendoring a full CSG/BSP library, at the cost of an STL that is
// only a valid boolean result when the operands do not overlap in a way
// that would require real face-face clipping.
func Union(meshes ...*Mesh) *Mesh {
	out := &Mesh{}
	for _, m := range meshes {
		out.Triangles = append(out.Triangles, m.Triangles...)
	}
	return out
}

func Difference(base *Mesh, subtract ...*Mesh) *Mesh {
	return Union(append([]*Mesh{base}, subtract...)...)
}

func Intersection(meshes ...*Mesh) *Mesh {
	return Union(meshes...)
}

// Translate returns a copy of m moved by (dx, dy, dz).
func Translate(m *Mesh, dx, dy, dz float64) *Mesh {
	return transform(m, func(v Vec3) Vec3 { return Vec3{v.X + dx, v.Y + dy, v.Z + dz} })
}

// Scale returns a copy of m scaled about the origin.
func Scale(m *Mesh, sx, sy, sz float64) *Mesh {
	return transform(m, func(v Vec3) Vec3 { return Vec3{v.X * sx, v.Y * sy, v.Z * sz} })
}

// RotateZ returns a copy of m rotated by degrees around the Z axis.
func RotateZ(m *Mesh, degrees float64) *Mesh {
	rad := degrees * math.Pi / 180
	cs, sn := math.Cos(rad), math.Sin(rad)
	return transform(m, func(v Vec3) Vec3 {
		return Vec3{v.X*cs - v.Y*sn, v.X*sn + v.Y*cs, v.Z}
	})
}

// RotateX returns a copy of m rotated by degrees around the X axis.
func RotateX(m *Mesh, degrees float64) *Mesh {
	rad := degrees * math.Pi / 180
	cs, sn := math.Cos(rad), math.Sin(rad)
	return transform(m, func(v Vec3) Vec3 {
		return Vec3{v.X, v.Y*cs - v.Z*sn, v.Y*sn + v.Z*cs}
	})
}

// RotateY returns a copy of m rotated by degrees around the Y axis.
func RotateY(m *Mesh, degrees float64) *Mesh {
	rad := degrees * math.Pi / 180
	cs, sn := math.Cos(rad), math.Sin(rad)
	return transform(m, func(v Vec3) Vec3 {
		return Vec3{v.X*cs + v.Z*sn, v.Y, -v.X*sn + v.Z*cs}
	})
}

func transform(m *Mesh, f func(Vec3) Vec3) *Mesh {
	out := &Mesh{Triangles: make([]Triangle, len(m.Triangles))}
	for i, t := range m.Triangles {
		out.Triangles[i] = Triangle{f(t.A), f(t.B), f(t.C)}
	}
	return out
}

// Extrude builds a prism by sweeping a 2D polygon profile (in the XY
// plane, Z=0) straight up by height. The top and bottom caps are
// triangulated with a simple fan from the first vertex, which is exact for
// convex profiles and a reasonable approximation for mildly non-convex
// ones.
func Extrude(profile []Vec2, height float64) *Mesh {
	n := len(profile)
	if n < 3 {
		return &Mesh{}
	}
	m := &Mesh{}
	bottom := make([]Vec3, n)
	top := make([]Vec3, n)
	for i, p := range profile {
		bottom[i] = Vec3{p.X, p.Y, 0}
		top[i] = Vec3{p.X, p.Y, height}
	}
	for i := 1; i < n-1; i++ {
		m.Triangles = append(m.Triangles, Triangle{bottom[0], bottom[i+1], bottom[i]})
		m.Triangles = append(m.Triangles, Triangle{top[0], top[i], top[i+1]})
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m.Triangles = append(m.Triangles,
			Triangle{bottom[i], bottom[j], top[j]},
			Triangle{bottom[i], top[j], top[i]},
		)
	}
	return m
}

// Revolve sweeps a 2D polygon profile (treated as points in the XZ
// half-plane, X >= 0) a full turn around the Z axis, approximated with the
// given number of angular segments.
func Revolve(profile []Vec2, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	n := len(profile)
	if n < 2 {
		return &Mesh{}
	}
	ring := func(a float64) []Vec3 {
		pts := make([]Vec3, n)
		cs, sn := math.Cos(a), math.Sin(a)
		for i, p := range profile {
			pts[i] = Vec3{p.X * cs, p.X * sn, p.Y}
		}
		return pts
	}
	m := &Mesh{}
	prev := ring(0)
	for s := 1; s <= segments; s++ {
		a := 2 * math.Pi * float64(s) / float64(segments)
		cur := ring(a)
		for i := 0; i < n-1; i++ {
			m.Triangles = append(m.Triangles,
				Triangle{prev[i], cur[i], cur[i+1]},
				Triangle{prev[i], cur[i+1], prev[i+1]},
			)
		}
		prev = cur
	}
	return m
}

// BoundingBox returns the axis-aligned bounding box of m.
func BoundingBox(m *Mesh) (low, high Vec3) {
	if len(m.Triangles) == 0 {
		return Vec3{}, Vec3{}
	}
	first := m.Triangles[0].A
	low, high = first, first
	expand := func(v Vec3) {
		low.X, high.X = math.Min(low.X, v.X), math.Max(high.X, v.X)
		low.Y, high.Y = math.Min(low.Y, v.Y), math.Max(high.Y, v.Y)
		low.Z, high.Z = math.Min(low.Z, v.Z), math.Max(high.Z, v.Z)
	}
	for _, t := range m.Triangles {
		expand(t.A)
		expand(t.B)
		expand(t.C)
	}
	return low, high
}

// Slice intersects m with the horizontal plane Z=z and returns the convex
// hull of the intersection points as an approximate cross-section polygon.
// A precise slicer would trace closed loops from the intersection
// segments; the convex hull is a deliberate simplification appropriate for
// a stand-in kernel (see the package doc comment).
func Slice(m *Mesh, z float64) []Vec2 {
	var pts []Vec2
	edge := func(p, q Vec3) {
		if (p.Z <= z && q.Z >= z) || (p.Z >= z && q.Z <= z) {
			if p.Z == q.Z {
				return
			}
			t := (z - p.Z) / (q.Z - p.Z)
			if t < 0 || t > 1 {
				return
			}
			pts = append(pts, Vec2{p.X + t*(q.X-p.X), p.Y + t*(q.Y-p.Y)})
		}
	}
	for _, t := range m.Triangles {
		edge(t.A, t.B)
		edge(t.B, t.C)
		edge(t.C, t.A)
	}
	return ConvexHull(pts)
}

// BoundingRect returns the 2D bounding rectangle of a slice/polygon.
func BoundingRect(poly []Vec2) (low, high Vec2) {
	if len(poly) == 0 {
		return Vec2{}, Vec2{}
	}
	low, high = poly[0], poly[0]
	for _, p := range poly[1:] {
		low.X, high.X = math.Min(low.X, p.X), math.Max(high.X, p.X)
		low.Y, high.Y = math.Min(low.Y, p.Y), math.Max(high.Y, p.Y)
	}
	return low, high
}
