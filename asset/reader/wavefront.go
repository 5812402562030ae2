package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/hitmiss/asset"
	"github.com/achilleasa/hitmiss/log"
	"github.com/achilleasa/hitmiss/scene"
	"github.com/achilleasa/hitmiss/types"
)

// Default vertical field of view used when the scene only sets some of the
// camera directives.
const defaultCameraFOV float32 = 45

type wavefrontSceneReader struct {
	logger log.Logger

	// The parsed scene.
	scene *scene.Scene

	// Camera settings; the camera is only attached if at least one
	// camera directive is present.
	camera    *scene.Camera
	hasCamera bool

	// The name of the current object/group and the number of faces
	// parsed for it.
	meshName  string
	meshFaces int

	// List of vertices, normals and uv coords. Normals and uv coords are
	// only tracked so that face indices referencing them can be validated.
	vertexList  []types.Vec3
	normalCount int
	uvCount     int

	// Directives that were skipped; each one is reported once.
	skipped map[string]bool

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:     log.New("wavefront scene reader"),
		scene:      scene.NewScene(),
		camera:     scene.NewCamera(defaultCameraFOV),
		vertexList: make([]types.Vec3, 0),
		skipped:    make(map[string]bool),
		errStack:   make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	if r.hasCamera {
		r.camera.Update()
		r.scene.SetCamera(r.camera)
	}

	r.logger.Noticef(
		"parsed scene in %d ms: %d vertices, %d primitives",
		time.Since(start).Nanoseconds()/1e6,
		len(r.vertexList), len(r.scene.Primitives),
	)
	return r.scene, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return fmt.Errorf("%s", strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := r.uvCount
	relNormalOffset := r.normalCount

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}

			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			if _, err := parseVec3(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.normalCount++
		case "vt":
			if _, err := parseVec2(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.uvCount++
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedMesh()
			r.meshName = lineTokens[1]
			r.meshFaces = 0
		case "f":
			primList, err := r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}

			for _, prim := range primList {
				if err = r.scene.AddPrimitive(prim); err != nil {
					return r.emitError(res.Path(), lineNum, "%s", err)
				}
			}
			r.meshFaces++
		case "sphere":
			sphere, err := parseSphere(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			if err = r.scene.AddPrimitive(sphere); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
		case "box":
			box, err := parseBox(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			if err = r.scene.AddPrimitive(box); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
		case "camera_fov":
			r.camera.FOV, err = parseFloat32(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.hasCamera = true
		case "camera_eye":
			r.camera.Position, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.hasCamera = true
		case "camera_look":
			r.camera.LookAt, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.hasCamera = true
		case "camera_up":
			r.camera.Up, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err)
			}
			r.hasCamera = true
		default:
			if !r.skipped[lineTokens[0]] {
				r.skipped[lineTokens[0]] = true
				r.logger.Infof(`skipping unsupported directive "%s" in %s`, lineTokens[0], res.Path())
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err)
	}

	r.verifyLastParsedMesh()
	return nil
}

// Warn about named objects that did not define any faces.
func (r *wavefrontSceneReader) verifyLastParsedMesh() {
	if r.meshName != "" && r.meshFaces == 0 {
		r.logger.Warningf(`mesh "%s" contains no polygons`, r.meshName)
	}
	r.meshName = ""
}

// Parse face definition. Each face definitions consists of 3 or 4 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 args separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate an offset off the end
// of the vertex/uv/normal list. Quad faces are split into two triangles.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) ([]scene.Primitive, error) {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var vertices [4]types.Vec3
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]

		if expIndices > 1 && vTokens[1] != "" {
			if _, err = selectFaceCoordIndex(vTokens[1], r.uvCount, relUvOffset); err != nil {
				return nil, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		if expIndices > 2 && vTokens[2] != "" {
			if _, err = selectFaceCoordIndex(vTokens[2], r.normalCount, relNormalOffset); err != nil {
				return nil, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
		}
	}

	// Assemble vertices into one or two triangles depending on whether we
	// are parsing a triangular or a quad face
	primitives := []scene.Primitive{
		scene.NewTriangle(vertices[0], vertices[1], vertices[2]),
	}
	if len(lineTokens) == 5 {
		primitives = append(primitives, scene.NewTriangle(vertices[0], vertices[2], vertices[3]))
	}

	return primitives, nil
}

// Parse a sphere definition: sphere cX cY cZ radius
func parseSphere(lineTokens []string) (*scene.Sphere, error) {
	if len(lineTokens) != 5 {
		return nil, fmt.Errorf(`unsupported syntax for "sphere"; expected 4 arguments: cX cY cZ radius; got %d`, len(lineTokens)-1)
	}

	center, err := parseVec3(lineTokens[:4])
	if err != nil {
		return nil, err
	}
	radius, err := parseFloat32(lineTokens[3:])
	if err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, fmt.Errorf("sphere radius must be positive; got %v", radius)
	}
	return scene.NewSphere(center, radius), nil
}

// Parse an axis-aligned box definition: box minX minY minZ maxX maxY maxZ
func parseBox(lineTokens []string) (*scene.Box, error) {
	if len(lineTokens) != 7 {
		return nil, fmt.Errorf(`unsupported syntax for "box"; expected 6 arguments: minX minY minZ maxX maxY maxZ; got %d`, len(lineTokens)-1)
	}

	minCorner, err := parseVec3(lineTokens[:4])
	if err != nil {
		return nil, err
	}
	maxCorner, err := parseVec3(lineTokens[3:])
	if err != nil {
		return nil, err
	}
	for axis := 0; axis < types.NumAxes; axis++ {
		if minCorner[axis] > maxCorner[axis] {
			return nil, fmt.Errorf("box min corner %v exceeds max corner %v", minCorner, maxCorner)
		}
	}
	return &scene.Box{Min: minCorner, Max: maxCorner}, nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if index == 0 || vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
