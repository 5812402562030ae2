package main

import (
	"fmt"
	"math"
	"os"

	"github.com/achilleasa/hitmiss/bvh"
	"github.com/achilleasa/hitmiss/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	epsilonFlag := cli.Float64Flag{
		Name:  "epsilon",
		Value: float64(bvh.DefaultEpsilon),
		Usage: "margin added to every side of the hierarchy boxes",
	}

	app := cli.NewApp()
	app.Name = "hitmiss"
	app.Usage = "build stackless bounding volume hierarchies and trace rays against them"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set log level explicitly: debug | info | notice | warning | error",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "stats",
			Usage: "build the hierarchy for a scene and display its statistics",
			Description: `
Parse a scene from a wavefront obj, stl or zip file, build its bounding volume
hierarchy and display node counts, split axes and memory usage.

When the --watch flag is specified the hierarchy is rebuilt each time the scene
file changes.`,
			ArgsUsage: "scene_file",
			Flags: []cli.Flag{
				epsilonFlag,
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: "rebuild the hierarchy when the scene file changes",
				},
			},
			Action: cmd.ShowSceneStats,
		},
		{
			Name:        "intersect",
			Usage:       "cast a single ray against a scene",
			Description: `Report the primitive closest to the ray origin within (tmin, tmax) and the hit distance.`,
			ArgsUsage:   "scene_file",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "origin, o",
					Value: "0,0,0",
					Usage: "ray origin as x,y,z",
				},
				cli.StringFlag{
					Name:  "dir, d",
					Value: "0,0,-1",
					Usage: "ray direction as x,y,z",
				},
				cli.Float64Flag{
					Name:  "tmin",
					Value: 0,
					Usage: "ignore hits at or before this distance",
				},
				cli.Float64Flag{
					Name:  "tmax",
					Value: math.Inf(1),
					Usage: "ignore hits at or beyond this distance",
				},
				epsilonFlag,
			},
			Action: cmd.IntersectRay,
		},
		{
			Name:  "render",
			Usage: "render scene depth",
			Description: `
Cast a primary ray for each frame pixel and save the distance to the closest
hit as a grayscale bmp image. Closer hits are brighter; pixels that miss the
scene are black.

Camera, frame, hierarchy and tracer settings can be loaded from a view file.
Run the view-config command to get an annotated example.`,
			ArgsUsage: "scene_file",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "load view settings from this file",
				},
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "number of tracer goroutines; 0 selects one per CPU",
				},
				cli.StringFlag{
					Name:  "scheduler",
					Value: "perfect",
					Usage: "block scheduling strategy: naive | perfect",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "depth.bmp",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
		{
			Name:   "view-config",
			Usage:  "print an annotated view file with the default settings",
			Action: cmd.ShowExampleView,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
