// Package objfile provides a parser for Wavefront OBJ models, covering the
// subset the impostor tool needs: positions, texture coordinates, normals
// and polygonal faces (triangulated on load).
package objfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// OBJ format errors.
var (
	ErrNoGeometry  = errors.New("obj: file contains no faces")
	ErrInvalidFace = errors.New("obj: invalid face element")
)

// Model is a triangulated OBJ model. Every face corner is expanded into
// its own vertex so the arrays are index-aligned; corners without a UV or
// normal in the source file get zero values.
type Model struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// Load reads and parses an OBJ file.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obj: opening %s: %w", path, err)
	}
	defer f.Close()

	model, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("obj: parsing %s: %w", path, err)
	}
	return model, nil
}

// Parse reads an OBJ model from a reader.
func Parse(r io.Reader) (*Model, error) {
	var (
		positions []mgl32.Vec3
		uvs       []mgl32.Vec2
		normals   []mgl32.Vec3
	)

	model := &Model{}
	// corner index cache so shared v/vt/vn triples reuse one vertex
	seen := make(map[string]uint32)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, v)
		case "vt":
			v, err := parseVec2(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			uvs = append(uvs, v)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			normals = append(normals, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: %w: %d corners", line, ErrInvalidFace, len(fields)-1)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, spec := range fields[1:] {
				idx, err := model.corner(spec, positions, uvs, normals, seen)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				corners = append(corners, idx)
			}
			// Fan-triangulate polygons.
			for i := 1; i+1 < len(corners); i++ {
				model.Indices = append(model.Indices, corners[0], corners[i], corners[i+1])
			}
		default:
			// Groups, materials and smoothing are irrelevant here.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(model.Indices) == 0 {
		return nil, ErrNoGeometry
	}
	return model, nil
}

// corner resolves one face element ("v", "v/vt", "v//vn" or "v/vt/vn")
// into a model vertex, reusing identical triples.
func (m *Model) corner(spec string, positions []mgl32.Vec3, uvs []mgl32.Vec2, normals []mgl32.Vec3, seen map[string]uint32) (uint32, error) {
	if idx, ok := seen[spec]; ok {
		return idx, nil
	}

	parts := strings.Split(spec, "/")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFace, spec)
	}

	pi, err := resolveIndex(parts[0], len(positions))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidFace, spec, err)
	}

	var uv mgl32.Vec2
	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveIndex(parts[1], len(uvs))
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidFace, spec, err)
		}
		uv = uvs[ti]
	}

	var n mgl32.Vec3
	if len(parts) > 2 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], len(normals))
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidFace, spec, err)
		}
		n = normals[ni]
	}

	idx := uint32(len(m.Positions))
	m.Positions = append(m.Positions, positions[pi])
	m.UVs = append(m.UVs, uv)
	m.Normals = append(m.Normals, n)
	seen[spec] = idx
	return idx, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index into a
// 0-based slice index.
func resolveIndex(s string, count int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case v > 0 && v <= count:
		return v - 1, nil
	case v < 0 && -v <= count:
		return count + v, nil
	default:
		return 0, fmt.Errorf("index %d out of range (have %d)", v, count)
	}
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("obj: expected 3 components, got %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("obj: bad component %q", fields[i])
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseVec2(fields []string) (mgl32.Vec2, error) {
	if len(fields) < 2 {
		return mgl32.Vec2{}, fmt.Errorf("obj: expected 2 components, got %d", len(fields))
	}
	var v mgl32.Vec2
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec2{}, fmt.Errorf("obj: bad component %q", fields[i])
		}
		v[i] = float32(f)
	}
	return v, nil
}

// Bounds returns the min and max corners of the model's positions.
func (m *Model) Bounds() (min, max mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	min = m.Positions[0]
	max = m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return
}
