package reader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/hitmiss/asset"
	"github.com/achilleasa/hitmiss/log"
	"github.com/achilleasa/hitmiss/scene"
	"github.com/achilleasa/hitmiss/types"
)

const (
	// Binary STL layout: 80 byte header, uint32 triangle count and 50 bytes
	// per triangle (normal, 3 vertices, uint16 attribute count).
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

type stlSceneReader struct {
	logger log.Logger
}

// Create a new STL scene reader.
func newStlReader() *stlSceneReader {
	return &stlSceneReader{
		logger: log.New("stl scene reader"),
	}
}

// Read an ASCII or binary STL file. Every facet becomes a triangle primitive.
func (p *stlSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`parsing stl mesh from "%s"`, sceneRes.Path())
	start := time.Now()

	// Resources are not seekable; buffer the whole stream so that the
	// format can be detected before parsing.
	data, err := io.ReadAll(sceneRes)
	if err != nil {
		return nil, fmt.Errorf("reader: failed to read %s: %w", sceneRes.Path(), err)
	}

	var triangles [][3]types.Vec3
	if isBinaryStl(data) {
		triangles, err = parseBinaryStl(data)
	} else {
		triangles, err = parseASCIIStl(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
	}

	sc := scene.NewScene()
	for _, tri := range triangles {
		if err = sc.AddPrimitive(scene.NewTriangle(tri[0], tri[1], tri[2])); err != nil {
			return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
		}
	}

	p.logger.Noticef("parsed %d triangles in %d ms", len(triangles), time.Since(start).Nanoseconds()/1e6)
	return sc, nil
}

// Binary files may also start with "solid" so the payload size implied by
// the triangle count is checked first.
func isBinaryStl(data []byte) bool {
	if len(data) >= stlHeaderSize+4 {
		count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
		if uint64(len(data)) == stlHeaderSize+4+uint64(count)*stlTriangleSize {
			return true
		}
	}
	return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

func parseBinaryStl(data []byte) ([][3]types.Vec3, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, fmt.Errorf("truncated binary stl header")
	}

	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	body := data[stlHeaderSize+4:]
	if uint64(len(body)) < uint64(count)*stlTriangleSize {
		return nil, fmt.Errorf("expected %d triangles; file only contains %d", count, len(body)/stlTriangleSize)
	}

	triangles := make([][3]types.Vec3, count)
	for i := range triangles {
		// Skip the facet normal
		offset := i*stlTriangleSize + 12
		for v := 0; v < 3; v++ {
			for axis := 0; axis < 3; axis++ {
				bits := binary.LittleEndian.Uint32(body[offset:])
				triangles[i][v][axis] = math.Float32frombits(bits)
				offset += 4
			}
		}
	}
	return triangles, nil
}

func parseASCIIStl(reader io.Reader) ([][3]types.Vec3, error) {
	scanner := bufio.NewScanner(reader)
	triangles := make([][3]types.Vec3, 0)

	var vertices []types.Vec3
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "facet":
			vertices = vertices[:0]
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: expected 3 vertex coordinates; got %d", lineNum, len(fields)-1)
			}
			var v types.Vec3
			for axis := 0; axis < 3; axis++ {
				coord, err := strconv.ParseFloat(fields[axis+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				v[axis] = float32(coord)
			}
			vertices = append(vertices, v)
		case "endfacet":
			if len(vertices) != 3 {
				return nil, fmt.Errorf("line %d: expected facet with 3 vertices; got %d", lineNum, len(vertices))
			}
			triangles = append(triangles, [3]types.Vec3{vertices[0], vertices[1], vertices[2]})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return triangles, nil
}
