package cmd

import (
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/achilleasa/hitmiss/asset/reader"
	"github.com/achilleasa/hitmiss/asset/watcher"
	"github.com/achilleasa/hitmiss/bvh"
	"github.com/achilleasa/hitmiss/scene"
	"github.com/achilleasa/hitmiss/types"
	"github.com/urfave/cli"
)

// Delay between the last change to a watched scene and the rebuild.
const watchDebounce = 250 * time.Millisecond

// Read a scene file and build its hierarchy.
func loadScene(sceneFile string, opts ...bvh.Option) (*scene.Scene, error) {
	sc, err := reader.ReadScene(sceneFile)
	if err != nil {
		return nil, err
	}

	opts = append(opts, bvh.WithLogger(logger))
	start := time.Now()
	if err = sc.Compile(opts...); err != nil {
		return nil, err
	}
	logger.Noticef("built hierarchy for %d primitives in %d ms", len(sc.Primitives), time.Since(start).Nanoseconds()/1e6)

	return sc, nil
}

// Create a camera that frames the entire scene when looking down the -Z axis.
func fitCamera(sc *scene.Scene, fov float32) *scene.Camera {
	bounds := sc.Hierarchy().Bounds()
	center := bounds.Center()
	radius := bounds.Extent().Len() / 2
	if radius == 0 {
		radius = 1
	}

	dist := radius / float32(math.Sin(float64(fov)*math.Pi/360))
	cam := scene.NewCamera(fov)
	cam.LookAt = center
	cam.Position = center.Add(types.XYZ(0, 0, dist))
	return cam
}

// Build the hierarchy for a scene and display its statistics. If the watch
// flag is set the hierarchy is rebuilt whenever the scene file changes.
func ShowSceneStats(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}
	sceneFile := ctx.Args().First()
	opts := []bvh.Option{bvh.WithEpsilon(float32(ctx.Float64("epsilon")))}

	showStats := func() error {
		sc, err := loadScene(sceneFile, opts...)
		if err != nil {
			return err
		}
		logger.Noticef("hierarchy statistics for %s\n%s", sceneFile, sc.Hierarchy().Stats().Table())
		return nil
	}

	if err := showStats(); err != nil {
		return err
	}
	if !ctx.Bool("watch") {
		return nil
	}

	fw, err := watcher.New(watchDebounce)
	if err != nil {
		return err
	}
	defer fw.Close()

	err = fw.Watch([]string{sceneFile}, func(path string) {
		logger.Noticef("detected changes to %s; rebuilding hierarchy", path)
		if err := showStats(); err != nil {
			logger.Errorf("%s", err)
		}
	})
	if err != nil {
		return err
	}
	fw.Start()

	logger.Noticef("watching %s for changes; press ctrl+c to exit", sceneFile)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan
	return nil
}

// Cast a single ray against a scene and report the closest hit.
func IntersectRay(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	var origin, dir types.Vec3
	if err := origin.UnmarshalText([]byte(ctx.String("origin"))); err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}
	if err := dir.UnmarshalText([]byte(ctx.String("dir"))); err != nil {
		return fmt.Errorf("invalid direction: %w", err)
	}
	if dir.Len() == 0 {
		return errors.New("ray direction must not be a zero vector")
	}

	tMin, tMax := float32(ctx.Float64("tmin")), float32(ctx.Float64("tmax"))
	if !(tMin < tMax) {
		return fmt.Errorf("tmin (%g) must be less than tmax (%g)", tMin, tMax)
	}

	sc, err := loadScene(ctx.Args().First(), bvh.WithEpsilon(float32(ctx.Float64("epsilon"))))
	if err != nil {
		return err
	}

	hit, ok, err := sc.Hit(origin, dir, tMin, tMax)
	if err != nil {
		return err
	}
	if !ok {
		logger.Noticef("ray %v -> %v does not hit any primitive in (%g, %g)", origin, dir, tMin, tMax)
		return nil
	}

	logger.Noticef(
		"ray %v -> %v hits primitive %d (%T) at distance %g; hit point %v",
		origin, dir, hit.Primitive, sc.Primitives[hit.Primitive], hit.Distance, hit.Point,
	)
	return nil
}
