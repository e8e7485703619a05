// Package viewer renders an assembled document in an interactive window:
// free camera, editor grid, one lit mesh per solid. Geometry comes straight
// from the mesh kernel with placements baked in, so the preview shows exactly
// what the OBJ export contains.
package viewer

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"textcad/internal/assembler"
	"textcad/internal/cadmesh"
)

const (
	windowWidth  = 1280
	windowHeight = 800

	gridExtent     = 50
	gridMinorStep  = 1
	gridMajorStep  = 10
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
)

// classColors tints each solid by its shape class so mixed documents stay
// readable. Lookup is by class name; unknown names fall back to gray.
var classColors = map[string]rl.Color{
	"plane":    rl.NewColor(140, 140, 150, 255),
	"box":      rl.NewColor(170, 120, 90, 255),
	"cylinder": rl.NewColor(110, 150, 180, 255),
	"cone":     rl.NewColor(180, 160, 100, 255),
	"sphere":   rl.NewColor(120, 170, 120, 255),
	"torus":    rl.NewColor(160, 120, 170, 255),
}

var defaultColor = rl.NewColor(128, 128, 128, 255)

// Viewer holds a 3D camera and the document's GPU meshes. Update runs camera
// logic; Draw renders between BeginMode3D and EndMode3D. Camera handling is
// based on raylib examples/core/core_3d_camera_free.
type Viewer struct {
	Camera      rl.Camera3D
	GridVisible bool

	doc        *assembler.Document
	cursorDone bool

	// GPU state, created lazily on first Draw so allocation happens after the
	// window/OpenGL context exists.
	uploaded bool
	meshes   []rl.Mesh
	colors   []rl.Color
	mtl      rl.Material
	// Backing arrays for uploaded meshes; held so they outlive the GPU copy.
	buffers [][]float32
	indices [][]uint16
}

// New returns a viewer over the document with a perspective camera looking at
// the origin. Camera: position (10,10,10), target (0,0,0), up (0,1,0),
// fovy 45°. Grid is visible by default.
func New(doc *assembler.Document) *Viewer {
	v := &Viewer{doc: doc}
	v.Camera.Position = rl.NewVector3(10, 10, 10)
	v.Camera.Target = rl.NewVector3(0, 0, 0)
	v.Camera.Up = rl.NewVector3(0, 1, 0)
	v.Camera.Fovy = 45
	v.Camera.Projection = rl.CameraPerspective
	v.GridVisible = true
	return v
}

// Run opens the window and drives the frame loop until the window closes.
func Run(v *Viewer) {
	rl.InitWindow(windowWidth, windowHeight, "textcad viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		v.Update()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		v.Draw()
		rl.EndDrawing()
	}
}

// Update runs once per frame. Uses raylib UpdateCamera with CameraFree so the
// user can move the camera with mouse (zoom, pan) and keyboard. Cursor is
// disabled so the mouse is captured for camera control.
func (v *Viewer) Update() {
	if !v.cursorDone {
		rl.DisableCursor()
		v.cursorDone = true
	}
	rl.UpdateCamera(&v.Camera, rl.CameraFree)
}

// Draw renders the document. The grid lies on the window's XZ plane; solids
// are modeled Z-up, so a fixed -90° X rotation maps them into the window's
// Y-up frame at draw time.
func (v *Viewer) Draw() {
	v.ensureUploaded()
	rl.BeginMode3D(v.Camera)
	if v.GridVisible {
		drawEditorGrid()
	}

	pos := v.Camera.Position
	setLitUniforms(v.mtl.Shader, [3]float32{pos.X, pos.Y, pos.Z})
	transform := rl.MatrixRotateX(-math.Pi / 2)
	for i, mesh := range v.meshes {
		if albedo := v.mtl.GetMap(rl.MapAlbedo); albedo != nil {
			albedo.Color = v.colors[i]
		}
		rl.DrawMesh(mesh, v.mtl, transform)
	}
	rl.EndMode3D()
}

// ensureUploaded bakes each entry's placement into its mesh and uploads it.
func (v *Viewer) ensureUploaded() {
	if v.uploaded {
		return
	}
	v.uploaded = true

	v.mtl = rl.LoadMaterialDefault()
	if shader := rl.LoadShaderFromMemory(litVS, litFS); rl.IsShaderValid(shader) {
		v.mtl.Shader = shader
	}

	for _, e := range v.doc.Entries() {
		src, ok := e.Solid.(*cadmesh.Mesh)
		if !ok {
			continue
		}
		baked := src.Clone()
		baked.Transform(e.Placement)
		verts, norms, idx, ok := meshBuffers(baked)
		if !ok {
			// Too finely tessellated for 16-bit indices; the OBJ export still
			// carries the full mesh, only the preview skips it.
			continue
		}
		v.meshes = append(v.meshes, v.upload(len(baked.Vertices), verts, norms, idx))

		color := defaultColor
		if c, ok := classColors[e.Params.Class().String()]; ok {
			color = c
		}
		v.colors = append(v.colors, color)
	}
}

// maxUploadVertices is the most vertices one uploaded mesh can address:
// raylib mesh indices are 16-bit.
const maxUploadVertices = 1 << 16

// meshBuffers flattens a kernel mesh into raylib's vertex/normal/index layout.
// ok is false when the mesh has more vertices than 16-bit indices can address.
func meshBuffers(m *cadmesh.Mesh) (verts, norms []float32, idx []uint16, ok bool) {
	if len(m.Vertices) > maxUploadVertices {
		return nil, nil, nil, false
	}
	verts = make([]float32, 0, len(m.Vertices)*3)
	norms = make([]float32, 0, len(m.Normals)*3)
	for i := range m.Vertices {
		verts = append(verts, m.Vertices[i][0], m.Vertices[i][1], m.Vertices[i][2])
		norms = append(norms, m.Normals[i][0], m.Normals[i][1], m.Normals[i][2])
	}
	idx = make([]uint16, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		idx = append(idx, uint16(f[0]), uint16(f[1]), uint16(f[2]))
	}
	return verts, norms, idx, true
}

// upload pushes flattened mesh buffers to the GPU.
func (v *Viewer) upload(vertexCount int, verts, norms []float32, idx []uint16) rl.Mesh {
	v.buffers = append(v.buffers, verts, norms)
	v.indices = append(v.indices, idx)

	var mesh rl.Mesh
	mesh.VertexCount = int32(vertexCount)
	mesh.TriangleCount = int32(len(idx) / 3)
	mesh.Vertices = &verts[0]
	mesh.Normals = &norms[0]
	mesh.Indices = &idx[0]
	rl.UploadMesh(&mesh, false)
	return mesh
}

// Summary returns a one-line description of the document for the window log.
func (v *Viewer) Summary() string {
	return fmt.Sprintf("%d solids", v.doc.Len())
}

// drawEditorGrid draws an infinite-style grid on the XZ plane with major and
// minor lines plus axis lines. Reuses start/end vectors to avoid per-frame
// allocations in the hot loop.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY := rl.NewColor(80, 220, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	var start, end rl.Vector3
	for x := -gridExtent; x <= gridExtent; x += gridMinorStep {
		c := major
		if x%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), 0, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(x), 0, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
	}
	for z := -gridExtent; z <= gridExtent; z += gridMinorStep {
		c := major
		if z%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(-gridExtent), 0, float32(z)
		end.X, end.Y, end.Z = float32(gridExtent), 0, float32(z)
		rl.DrawLine3D(start, end, c)
	}

	// Axis lines through origin (X=red, Y=green, Z=blue).
	start.X, start.Y, start.Z = float32(-gridExtent), 0, 0
	end.X, end.Y, end.Z = float32(gridExtent), 0, 0
	rl.DrawLine3D(start, end, axisX)
	start.X, start.Y, start.Z = 0, float32(-gridExtent), 0
	end.X, end.Y, end.Z = 0, float32(gridExtent), 0
	rl.DrawLine3D(start, end, axisY)
	start.X, start.Y, start.Z = 0, 0, float32(-gridExtent)
	end.X, end.Y, end.Z = 0, 0, float32(gridExtent)
	rl.DrawLine3D(start, end, axisZ)
}
