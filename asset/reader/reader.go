// Package reader loads scenes from mesh files.
package reader

import (
	"fmt"

	"github.com/achilleasa/hitmiss/asset"
	"github.com/achilleasa/hitmiss/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or http(s) URL. The reader is selected by the
// file extension.
func ReadScene(filename string) (*scene.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return ReadResource(res)
}

// Read scene from an already opened resource.
func ReadResource(res *asset.Resource) (*scene.Scene, error) {
	reader, err := readerFor(res.Ext())
	if err != nil {
		return nil, err
	}
	return reader.Read(res)
}

// Select reader based on file extension.
func readerFor(ext string) (Reader, error) {
	switch ext {
	case ".obj":
		return newWavefrontReader(), nil
	case ".stl":
		return newStlReader(), nil
	case ".zip":
		return newZipSceneReader(), nil
	}
	return nil, fmt.Errorf("reader: unsupported file format %q", ext)
}
