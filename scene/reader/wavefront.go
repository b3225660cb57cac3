package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lsp-plugins/lsp-dsp-units-sub001/log"
	scenePkg "github.com/lsp-plugins/lsp-dsp-units-sub001/scene"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/types"
)

type wavefrontReader struct {
	logger log.Logger

	// The scene being assembled.
	sc *scenePkg.Scene

	// Global vertex/normal lists; face indices refer into these.
	vertexList []types.Vec3
	normalList []types.Vec3

	// The object currently receiving faces.
	curObject *scenePkg.Object

	// Monotonic face id counter shared by all objects.
	nextFaceID int32
}

// Read a scene from a wavefront OBJ file.
func ReadFile(path string) (*scenePkg.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, path)
}

// Read a scene definition from an OBJ stream. Only the geometry subset of
// the format is supported: v, vn, f, o and g statements. Faces with more
// than three vertices are fan-triangulated.
func Read(r io.Reader, path string) (*scenePkg.Scene, error) {
	wf := &wavefrontReader{
		logger: log.New("wavefront"),
		sc:     &scenePkg.Scene{},
	}

	start := time.Now()
	if err := wf.parse(r, path); err != nil {
		return nil, err
	}
	wf.logger.Infof("parsed %d objects, %d triangles from %s in %d ms",
		len(wf.sc.Objects), wf.sc.TriangleCount(), path,
		time.Since(start).Nanoseconds()/1e6)

	return wf.sc, nil
}

func (wf *wavefrontReader) parse(r io.Reader, path string) error {
	var lineNum int

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		var err error
		switch lineTokens[0] {
		case "v":
			var v types.Vec3
			v, err = parseVec3(lineTokens)
			wf.vertexList = append(wf.vertexList, v)
		case "vn":
			var v types.Vec3
			v, err = parseVec3(lineTokens)
			wf.normalList = append(wf.normalList, v)
		case "o", "g":
			name := ""
			if len(lineTokens) > 1 {
				name = lineTokens[1]
			}
			wf.beginObject(name)
		case "f":
			err = wf.parseFace(lineTokens)
		default:
			// vt, mtllib, usemtl, s and friends carry no geometry.
			continue
		}

		if err != nil {
			return fmt.Errorf("%s: %d: %s", path, lineNum, err)
		}
	}

	return scanner.Err()
}

// Start a new object; consecutive o/g statements without faces reuse the
// last empty object.
func (wf *wavefrontReader) beginObject(name string) {
	if wf.curObject != nil && len(wf.curObject.Triangles) == 0 {
		wf.curObject.Name = name
		return
	}
	wf.curObject = &scenePkg.Object{
		Name:      name,
		Transform: types.Ident4(),
	}
	wf.sc.AddObject(wf.curObject)
}

func (wf *wavefrontReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf("unsupported syntax for 'f'; expected at least 3 arguments; got %d", len(lineTokens)-1)
	}
	if wf.curObject == nil {
		wf.beginObject("default")
	}

	verts := make([]int32, 0, len(lineTokens)-1)
	norms := make([]int32, 0, len(lineTokens)-1)
	for _, token := range lineTokens[1:] {
		vIdx, nIdx, err := wf.parseFaceCorner(token)
		if err != nil {
			return err
		}
		verts = append(verts, vIdx)
		norms = append(norms, nIdx)
	}

	obj := wf.curObject
	faceID := wf.nextFaceID
	wf.nextFaceID++

	// Fan-triangulate and localize indices into the object's own storage.
	for i := 1; i < len(verts)-1; i++ {
		var tri scenePkg.Triangle
		corners := [3]int{0, i, i + 1}
		for c, idx := range corners {
			tri.Vertices[c] = int32(len(obj.Vertices))
			obj.Vertices = append(obj.Vertices, wf.vertexList[verts[idx]])
		}

		if norms[0] >= 0 && norms[corners[1]] >= 0 && norms[corners[2]] >= 0 {
			for c, idx := range corners {
				tri.Normals[c] = int32(len(obj.Normals))
				obj.Normals = append(obj.Normals, wf.normalList[norms[idx]])
			}
		} else {
			// Synthesize a flat normal from the winding.
			v0 := obj.Vertices[tri.Vertices[0]]
			v1 := obj.Vertices[tri.Vertices[1]]
			v2 := obj.Vertices[tri.Vertices[2]]
			n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
			for c := 0; c < 3; c++ {
				tri.Normals[c] = int32(len(obj.Normals))
				obj.Normals = append(obj.Normals, n)
			}
		}

		tri.FaceID = faceID
		obj.Triangles = append(obj.Triangles, tri)
	}

	return nil
}

// Parse a face corner of the form v, v/vt, v//vn or v/vt/vn. Returns the
// zero-based vertex index and normal index (-1 when absent). Negative OBJ
// indices are relative to the end of the respective list.
func (wf *wavefrontReader) parseFaceCorner(token string) (vIdx, nIdx int32, err error) {
	parts := strings.Split(token, "/")
	nIdx = -1

	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("could not parse vertex index %q", parts[0])
	}
	vIdx, err = resolveIndex(v, len(wf.vertexList))
	if err != nil {
		return 0, 0, err
	}

	if len(parts) == 3 && parts[2] != "" {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, fmt.Errorf("could not parse normal index %q", parts[2])
		}
		nIdx, err = resolveIndex(n, len(wf.normalList))
		if err != nil {
			return 0, 0, err
		}
	}

	return vIdx, nIdx, nil
}

// Convert a one-based (or negative relative) OBJ index to a zero-based one.
func resolveIndex(idx, listLen int) (int32, error) {
	switch {
	case idx > 0 && idx <= listLen:
		return int32(idx - 1), nil
	case idx < 0 && listLen+idx >= 0:
		return int32(listLen + idx), nil
	default:
		return 0, fmt.Errorf("index %d out of range; list contains %d entries", idx, listLen)
	}
}

func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	var v types.Vec3
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(lineTokens[i+1], 32)
		if err != nil {
			return types.Vec3{}, fmt.Errorf("could not parse %s argument %q", lineTokens[0], lineTokens[i+1])
		}
		v[i] = float32(val)
	}
	return v, nil
}
