package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/achilleasa/hitmiss/config"
	"github.com/achilleasa/hitmiss/renderer"
	"github.com/achilleasa/hitmiss/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a depth frame and save it as a bmp image.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	view, err := loadView(ctx)
	if err != nil {
		return err
	}

	sc, err := loadScene(ctx.Args().First(), view.BvhOptions()...)
	if err != nil {
		return err
	}

	switch {
	case view.HasCamera():
		sc.SetCamera(view.NewCamera())
	case sc.Camera == nil:
		logger.Notice("scene does not define a camera; framing entire scene")
		sc.SetCamera(fitCamera(sc, view.Camera.FOV))
	}
	sc.Camera.SetupProjection(float32(view.Frame.Width) / float32(view.Frame.Height))

	scheduler := tracer.PerfectScheduler()
	if view.Tracer.Scheduler == config.NaiveScheduler {
		scheduler = tracer.NaiveScheduler()
	}

	r, err := renderer.NewDefault(sc, scheduler, renderer.Options{
		FrameW:     uint32(view.Frame.Width),
		FrameH:     uint32(view.Frame.Height),
		NumTracers: view.Tracer.Workers,
	})
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}

	// Display stats
	displayFrameStats(r.Stats())

	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = renderer.WriteDepthBMP(f, r.DepthBuffer(), uint32(view.Frame.Width), uint32(view.Frame.Height)); err != nil {
		return err
	}
	logger.Noticef("wrote depth frame to %s", imgFile)

	return nil
}

// Print an annotated view file with the default settings.
func ShowExampleView(ctx *cli.Context) error {
	fmt.Print(config.ExampleViewFile)
	return nil
}

// Load the view file, if one was specified, and apply flag overrides.
func loadView(ctx *cli.Context) (*config.View, error) {
	view := config.DefaultView()
	if viewFile := ctx.String("config"); viewFile != "" {
		var err error
		if view, err = config.ReadView(viewFile); err != nil {
			return nil, err
		}
	}

	// Explicitly set flags take precedence over the view file
	if ctx.IsSet("width") {
		view.Frame.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		view.Frame.Height = ctx.Int("height")
	}
	if ctx.IsSet("workers") {
		view.Tracer.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("scheduler") {
		view.Tracer.Scheduler = strings.ToLower(ctx.String("scheduler"))
	}

	if err := view.Validate(); err != nil {
		return nil, err
	}
	return view, nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Primary", "Block height", "% of frame", "Rays", "Hits", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%d", stat.Rays),
			fmt.Sprintf("%d", stat.Hits),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%d", stats.Rays), fmt.Sprintf("%d", stats.Hits), stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
