package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/achilleasa/hitmiss/bvh"
	"github.com/achilleasa/hitmiss/log"
	"github.com/achilleasa/hitmiss/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScene(t *testing.T, payload string) string {
	t.Helper()
	sceneFile := filepath.Join(t.TempDir(), "scene.obj")
	require.NoError(t, os.WriteFile(sceneFile, []byte(payload), 0o644))
	return sceneFile
}

func TestLoadScene(t *testing.T) {
	sceneFile := writeScene(t, "sphere 0 0 0 1\nsphere 4 0 0 1\nbox -1 -1 -6 1 1 -4\n")

	sc, err := loadScene(sceneFile, bvh.WithEpsilon(0.01))
	require.NoError(t, err)
	require.NotNil(t, sc.Hierarchy())
	assert.Equal(t, 3, sc.Hierarchy().Len())
	assert.NoError(t, sc.Hierarchy().Validate())

	_, err = loadScene(writeScene(t, "# no primitives\n"))
	assert.ErrorIs(t, err, bvh.ErrNoElements)
}

func TestFitCamera(t *testing.T) {
	sc, err := loadScene(writeScene(t, "sphere 0 0 0 1\nsphere 4 2 -2 1\n"))
	require.NoError(t, err)

	cam := fitCamera(sc, 60)
	cam.SetupProjection(1)
	bounds := sc.Hierarchy().Bounds()
	assert.Equal(t, bounds.Center(), cam.LookAt)
	assert.Greater(t, cam.Position[2], bounds.Max[2])

	// The central ray hits the scene bounds and the whole scene fits in the
	// frustum.
	center := cam.Ray(0.5, 0.5)
	assert.InDelta(t, -1, center[2], 1e-6)
	for _, corner := range []float32{0, 1} {
		ray := cam.Ray(corner, corner)
		reach := cam.Position.Add(ray.Mul(cam.Position[2] - bounds.Center()[2]))
		assert.True(t, reach[0] < bounds.Min[0] || reach[0] > bounds.Max[0], "corner ray should pass outside the scene bounds")
	}
}

func TestDisplayFrameStats(t *testing.T) {
	var buf bytes.Buffer
	log.SetSink(&buf)
	defer log.SetSink(os.Stdout)

	displayFrameStats(renderer.FrameStats{
		Tracers: []renderer.TracerStat{
			{Id: "cpu-0", IsPrimary: true, BlockH: 6, FramePercent: 75, RenderTime: time.Millisecond, Rays: 48, Hits: 12},
			{Id: "cpu-1", BlockH: 2, FramePercent: 25, RenderTime: time.Millisecond, Rays: 16, Hits: 0},
		},
		RenderTime: 2 * time.Millisecond,
		Rays:       64,
		Hits:       12,
	})

	out := buf.String()
	assert.Contains(t, out, "frame statistics")
	assert.Contains(t, out, "cpu-0")
	assert.Contains(t, out, "75.0 %")
	assert.Contains(t, out, "TOTAL")
}
