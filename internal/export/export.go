// Package export turns finished texture sets and meshes into files on
// disk: PNG atlases and a Wavefront OBJ mesh. The pipeline itself never
// touches the filesystem; this is the persistence boundary.
package export

import (
	"bufio"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/Faultbox/impostor/internal/atlas"
	"github.com/Faultbox/impostor/internal/imaging"
	"github.com/Faultbox/impostor/internal/meshgen"
)

// WritePNG encodes one image to path, creating parent directories.
func WritePNG(img *imaging.Image, path string) error {
	if img.Empty() {
		return fmt.Errorf("export: refusing to write empty image to %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img.ToRGBA()); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// WriteTextureSet writes the packed atlases as <base>_albedo.png and,
// when present, <base>_normal.png under dir. Returns the written paths.
func WriteTextureSet(set *atlas.TextureSet, dir, base string) ([]string, error) {
	if set == nil || set.Albedo.Empty() {
		return nil, fmt.Errorf("export: texture set has no albedo atlas")
	}

	albedoPath := filepath.Join(dir, base+"_albedo.png")
	if err := WritePNG(set.Albedo, albedoPath); err != nil {
		return nil, err
	}
	paths := []string{albedoPath}

	if !set.Normal.Empty() {
		normalPath := filepath.Join(dir, base+"_normal.png")
		if err := WritePNG(set.Normal, normalPath); err != nil {
			return nil, err
		}
		paths = append(paths, normalPath)
	}
	return paths, nil
}

// WriteSnapshots dumps per-view snapshots as <base>_view_NN.png. Used for
// the degraded no-atlas state and for debugging capture output.
func WriteSnapshots(snapshots []*imaging.Image, dir, base string) ([]string, error) {
	var paths []string
	for i, snap := range snapshots {
		if snap.Empty() {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_view_%02d.png", base, i))
		if err := WritePNG(snap, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteMeshOBJ writes the billboard mesh as a Wavefront OBJ file with
// positions, UVs and normals. Tangents have no OBJ representation and are
// dropped; consumers that need them recompute from UVs.
func WriteMeshOBJ(mesh *meshgen.Mesh, path, name string) error {
	if mesh == nil || len(mesh.Vertices) == 0 {
		return fmt.Errorf("export: refusing to write empty mesh to %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "o %s\n", name)
	for _, v := range mesh.Vertices {
		fmt.Fprintf(w, "v %g %g %g\n", v.X(), v.Y(), v.Z())
	}
	for _, uv := range mesh.UVs {
		fmt.Fprintf(w, "vt %g %g\n", uv.X(), uv.Y())
	}
	for _, n := range mesh.Normals {
		fmt.Fprintf(w, "vn %g %g %g\n", n.X(), n.Y(), n.Z())
	}
	for t := 0; t+2 < len(mesh.Triangles); t += 3 {
		// OBJ indices are 1-based; position, UV and normal share an index.
		a := mesh.Triangles[t] + 1
		b := mesh.Triangles[t+1] + 1
		c := mesh.Triangles[t+2] + 1
		fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
