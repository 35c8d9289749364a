package export

import (
	"bufio"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/impostor/internal/atlas"
	"github.com/Faultbox/impostor/internal/imaging"
	"github.com/Faultbox/impostor/internal/meshgen"
	"github.com/Faultbox/impostor/internal/view"
)

func solid(w, h int) *imaging.Image {
	img := imaging.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{10, 200, 30, 255})
		}
	}
	return img
}

func TestWriteTextureSet(t *testing.T) {
	dir := t.TempDir()
	set := &atlas.TextureSet{
		Albedo: solid(8, 4),
		Normal: solid(8, 4),
	}

	paths, err := WriteTextureSet(set, dir, "tree")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want albedo + normal", len(paths))
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("missing output %s: %v", path, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
		if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
			t.Errorf("%s has size %v, want 8x4", path, img.Bounds())
		}
	}
}

func TestWriteTextureSetWithoutNormal(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteTextureSet(&atlas.TextureSet{Albedo: solid(4, 4)}, dir, "bush")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Errorf("got %d paths, want albedo only", len(paths))
	}
	if !strings.HasSuffix(paths[0], "bush_albedo.png") {
		t.Errorf("unexpected path %s", paths[0])
	}
}

func TestWriteTextureSetEmpty(t *testing.T) {
	if _, err := WriteTextureSet(&atlas.TextureSet{}, t.TempDir(), "x"); err == nil {
		t.Error("expected error for set without an albedo atlas")
	}
}

func TestWriteSnapshots(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteSnapshots([]*imaging.Image{solid(2, 2), nil, solid(3, 2)}, dir, "rock")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2 (nil snapshot skipped)", len(paths))
	}
	if !strings.HasSuffix(paths[1], "rock_view_02.png") {
		t.Errorf("snapshot naming should keep view indices, got %s", paths[1])
	}
}

func TestWriteMeshOBJ(t *testing.T) {
	set := &atlas.TextureSet{
		Albedo: solid(32, 16),
		Rects: []atlas.PlacementRect{
			{X: 0, Width: 16, Height: 16},
			{X: 16, Width: 16, Height: 16},
		},
		Directions: []mgl32.Vec3{{0, 0, 1}, {0, 0, -1}},
		Sizes:      []view.Size{{Width: 1, Height: 1}, {Width: 1, Height: 1}},
		Views:      2,
	}
	mesh, err := meshgen.Build(set, meshgen.Options{Profile: meshgen.ProfileQuad})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out", "tree.obj")
	if err := WriteMeshOBJ(mesh, path, "tree"); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	counts := map[string]int{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 {
			counts[fields[0]]++
		}
	}

	if counts["v"] != mesh.VertexCount() {
		t.Errorf("wrote %d positions, want %d", counts["v"], mesh.VertexCount())
	}
	if counts["vt"] != mesh.VertexCount() || counts["vn"] != mesh.VertexCount() {
		t.Errorf("wrote %d/%d uv/normal lines, want %d", counts["vt"], counts["vn"], mesh.VertexCount())
	}
	if counts["f"] != mesh.TriangleCount() {
		t.Errorf("wrote %d faces, want %d", counts["f"], mesh.TriangleCount())
	}
}

func TestWriteMeshOBJEmpty(t *testing.T) {
	if err := WriteMeshOBJ(&meshgen.Mesh{}, filepath.Join(t.TempDir(), "x.obj"), "x"); err == nil {
		t.Error("expected error for empty mesh")
	}
}
