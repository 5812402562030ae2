package renderer

import (
	"bytes"
	"image"
	"math"
	"testing"

	"github.com/achilleasa/hitmiss/scene"
	"github.com/achilleasa/hitmiss/tracer"
	"github.com/achilleasa/hitmiss/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// Two spheres side by side in front of a camera looking down -Z.
func testScene(t *testing.T) *scene.Scene {
	sc := scene.NewScene()
	require.NoError(t, sc.AddPrimitive(scene.NewSphere(types.XYZ(-1, 0, 0), 0.75)))
	require.NoError(t, sc.AddPrimitive(scene.NewSphere(types.XYZ(1, 0, -2), 0.75)))
	require.NoError(t, sc.Compile())

	cam := scene.NewCamera(60)
	cam.Position = types.XYZ(0, 0, 6)
	cam.LookAt = types.XYZ(0, 0, 0)
	cam.SetupProjection(1)
	sc.SetCamera(cam)
	return sc
}

func TestNewDefaultErrors(t *testing.T) {
	opts := Options{FrameW: 4, FrameH: 4, NumTracers: 1}

	_, err := NewDefault(nil, tracer.NaiveScheduler(), opts)
	assert.Equal(t, ErrSceneNotDefined, err)

	uncompiled := scene.NewScene()
	require.NoError(t, uncompiled.AddPrimitive(scene.NewSphere(types.XYZ(0, 0, 0), 1)))
	_, err = NewDefault(uncompiled, tracer.NaiveScheduler(), opts)
	assert.Equal(t, ErrSceneNotCompiled, err)

	noCamera := testScene(t)
	noCamera.SetCamera(nil)
	_, err = NewDefault(noCamera, tracer.NaiveScheduler(), opts)
	assert.Equal(t, ErrCameraNotDefined, err)

	_, err = NewDefault(testScene(t), tracer.NaiveScheduler(), Options{FrameW: 4})
	assert.Equal(t, ErrInvalidFrameSize, err)
}

func TestRenderMatchesSceneQueries(t *testing.T) {
	sc := testScene(t)
	opts := Options{FrameW: 32, FrameH: 24, NumTracers: 3}
	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	for _, scheduler := range []tracer.BlockScheduler{tracer.NaiveScheduler(), tracer.PerfectScheduler()} {
		r, err := NewDefault(sc, scheduler, opts)
		require.NoError(t, err)

		// Render twice so the perfect scheduler uses frame feedback
		for frame := 0; frame < 2; frame++ {
			require.NoError(t, r.Render())

			depth := r.DepthBuffer()
			require.Len(t, depth, int(opts.FrameW*opts.FrameH))
			var expHits uint64
			for y := uint32(0); y < opts.FrameH; y++ {
				for x := uint32(0); x < opts.FrameW; x++ {
					u := (float32(x) + 0.5) / float32(opts.FrameW)
					v := (float32(y) + 0.5) / float32(opts.FrameH)
					hit, ok, err := sc.Hit(sc.Camera.Position, sc.Camera.Ray(u, v), 0, float32(math.Inf(1)))
					require.NoError(t, err)

					got := depth[y*opts.FrameW+x]
					if !ok {
						assert.True(t, math.IsInf(float64(got), 1), "pixel (%d, %d): expected a miss; got %f", x, y, got)
						continue
					}
					expHits++
					assert.Equal(t, hit.Distance, got, "pixel (%d, %d)", x, y)
				}
			}

			stats := r.Stats()
			require.Len(t, stats.Tracers, 3)
			assert.True(t, stats.Tracers[0].IsPrimary)
			assert.Equal(t, uint64(opts.FrameW*opts.FrameH), stats.Rays)
			assert.Equal(t, expHits, stats.Hits)
			assert.NotZero(t, expHits)

			var rows uint32
			var percent float32
			for _, trStat := range stats.Tracers {
				rows += trStat.BlockH
				percent += trStat.FramePercent
			}
			assert.Equal(t, opts.FrameH, rows)
			assert.InDelta(t, 100, percent, 1e-3)
		}

		r.Close()
		assert.Equal(t, ErrRendererClosed, r.Render())
	}
}

func TestRenderWithMoreTracersThanRows(t *testing.T) {
	sc := testScene(t)
	r, err := NewDefault(sc, tracer.NaiveScheduler(), Options{FrameW: 8, FrameH: 2, NumTracers: 4})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Render())
	var rows uint32
	for _, stat := range r.Stats().Tracers {
		rows += stat.BlockH
	}
	assert.Equal(t, uint32(2), rows)
	assert.Equal(t, uint64(16), r.Stats().Rays)
}

func TestDepthImage(t *testing.T) {
	inf := float32(math.Inf(1))
	depth := []float32{
		2, 4, inf,
		3, float32(math.NaN()), 2,
	}

	img, err := DepthImage(depth, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	assert.Equal(t, uint8(255), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(farGray), img.GrayAt(1, 0).Y)
	assert.Equal(t, uint8(0), img.GrayAt(2, 0).Y)
	assert.Equal(t, uint8(159), img.GrayAt(0, 1).Y)
	assert.Equal(t, uint8(0), img.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(255), img.GrayAt(2, 1).Y)

	_, err = DepthImage(depth, 2, 2)
	assert.Equal(t, ErrDepthBufferLength, err)
}

func TestWriteDepthBMP(t *testing.T) {
	depth := []float32{1, 1, float32(math.Inf(1)), 1}

	var buf bytes.Buffer
	require.NoError(t, WriteDepthBMP(&buf, depth, 2, 2))

	img, err := bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
	r, g, b, _ = img.At(0, 1).RGBA()
	assert.Equal(t, []uint32{0, 0, 0}, []uint32{r, g, b})
}
