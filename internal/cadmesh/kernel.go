package cadmesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"textcad/internal/assembler"
)

// Default tessellation, matching the renderer's primitive resolution.
const (
	DefaultSlices = 32
	DefaultRings  = 16
)

// Kernel builds triangle meshes and writes OBJ files. The zero value uses the
// default tessellation; set Slices and Rings for coarser or finer output.
type Kernel struct {
	Slices int // segments around an axis of revolution
	Rings  int // sphere latitude rings, torus tube segments
}

// NewKernel returns a kernel with the default tessellation.
func NewKernel() *Kernel {
	return &Kernel{Slices: DefaultSlices, Rings: DefaultRings}
}

func (k *Kernel) slices() int {
	if k.Slices > 0 {
		return k.Slices
	}
	return DefaultSlices
}

func (k *Kernel) rings() int {
	if k.Rings > 0 {
		return k.Rings
	}
	return DefaultRings
}

// MakePlane builds a rectangular face.
func (k *Kernel) MakePlane(length, width float32) (assembler.Solid, error) {
	return PlaneMesh(length, width), nil
}

// MakeBox builds a box from the origin corner.
func (k *Kernel) MakeBox(length, width, height float32) (assembler.Solid, error) {
	return BoxMesh(length, width, height), nil
}

// MakeCylinder builds a capped cylinder standing on z=0.
func (k *Kernel) MakeCylinder(radius, height float32) (assembler.Solid, error) {
	return CylinderMesh(radius, height, k.slices()), nil
}

// MakeCone builds a cone or frustum standing on z=0.
func (k *Kernel) MakeCone(radius1, radius2, height float32) (assembler.Solid, error) {
	return ConeMesh(radius1, radius2, height, k.slices()), nil
}

// MakeSphere builds a UV sphere centered on the origin.
func (k *Kernel) MakeSphere(radius float32) (assembler.Solid, error) {
	return SphereMesh(radius, k.rings(), k.slices()), nil
}

// MakeTorus builds a torus in the XY plane.
func (k *Kernel) MakeTorus(radius1, radius2 float32) (assembler.Solid, error) {
	return TorusMesh(radius1, radius2, k.slices(), k.rings()), nil
}

// WriteDocument writes the document as a Wavefront OBJ file. Each entry
// becomes one named object with its placement baked into world-space
// vertices, so any OBJ consumer sees the final scene.
func (k *Kernel) WriteDocument(doc *assembler.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cadmesh: creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	offset := 1 // OBJ indices are 1-based and global across objects
	for _, e := range doc.Entries() {
		mesh, ok := e.Solid.(*Mesh)
		if !ok {
			f.Close()
			return fmt.Errorf("cadmesh: entry %q holds a %T, not a mesh", e.Name, e.Solid)
		}
		baked := mesh.Clone()
		baked.Transform(e.Placement)

		fmt.Fprintf(w, "o %s\n", e.Name)
		for _, v := range baked.Vertices {
			writeTriple(w, "v", v)
		}
		for _, n := range baked.Normals {
			writeTriple(w, "vn", n)
		}
		for _, face := range baked.Faces {
			a, b, c := int(face[0])+offset, int(face[1])+offset, int(face[2])+offset
			fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		}
		offset += len(baked.Vertices)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("cadmesh: writing %s: %w", path, err)
	}
	return f.Close()
}

func writeTriple(w *bufio.Writer, prefix string, t [3]float32) {
	w.WriteString(prefix)
	for _, x := range t {
		w.WriteByte(' ')
		w.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	w.WriteByte('\n')
}
