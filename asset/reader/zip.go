package reader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/achilleasa/hitmiss/asset"
	"github.com/achilleasa/hitmiss/log"
	"github.com/achilleasa/hitmiss/scene"
)

type zipSceneReader struct {
	logger log.Logger
}

// Create a new zip scene reader.
func newZipSceneReader() *zipSceneReader {
	return &zipSceneReader{
		logger: log.New("zip reader"),
	}
}

// Read every supported mesh file stored in a zip archive and merge them into
// a single scene. Entries are processed in name order; the camera of the
// first entry that defines one is kept.
func (p *zipSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`parsing scene archive from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := io.ReadAll(sceneRes)
	if err != nil {
		return nil, fmt.Errorf("reader: failed to read %s: %w", sceneRes.Path(), err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
	}

	files := append([]*zip.File(nil), zr.File...)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	sc := scene.NewScene()
	loaded := 0
	for _, f := range files {
		ext := strings.ToLower(path.Ext(f.Name))
		if f.FileInfo().IsDir() || ext == ".zip" {
			continue
		}
		reader, err := readerFor(ext)
		if err != nil {
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		part, err := p.readEntry(f, reader)
		if err != nil {
			return nil, err
		}

		for _, prim := range part.Primitives {
			if err = sc.AddPrimitive(prim); err != nil {
				return nil, fmt.Errorf("reader: %s: %w", f.Name, err)
			}
		}
		if sc.Camera == nil && part.Camera != nil {
			sc.SetCamera(part.Camera)
		}
		loaded++
	}

	if loaded == 0 {
		return nil, fmt.Errorf("reader: %s does not contain any supported mesh files", sceneRes.Path())
	}

	p.logger.Noticef("loaded %d files from archive in %d ms", loaded, time.Since(start).Nanoseconds()/1e6)
	return sc, nil
}

func (p *zipSceneReader) readEntry(f *zip.File, reader Reader) (*scene.Scene, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("reader: failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	return reader.Read(asset.NewResourceFromStream(f.Name, rc))
}
