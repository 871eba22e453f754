package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/marcioAlmada/embree/geometry"
	"github.com/marcioAlmada/embree/tracer"
	"github.com/marcioAlmada/embree/types"
)

// Render a still frame of the built-in demo scene.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := tracer.RenderOptions{
		FrameW:  ctx.Int("width"),
		FrameH:  ctx.Int("height"),
		Packets: ctx.Bool("packets"),
		Time:    float32(ctx.Float64("time")),
		Light:   types.XYZ(0.5, 3, 2),
	}

	s, err := demoScene()
	if err != nil {
		return err
	}
	logger.Noticef("demo scene: %d geometries, %d triangles", s.GeometryCount(), s.PrimitiveCount())

	cfg := geometry.Config{
		BackfaceCulling: ctx.Bool("cull"),
		RayMask:         true,
		Filters:         true,
	}
	tr := tracer.New(s, cfg)
	cam := tracer.NewCamera(
		types.XYZ(0.5, 0.5, 3),
		types.XYZ(0.5, 0.25, -1),
		types.XYZ(0, 1, 0),
		60,
		float32(opts.FrameW)/float32(opts.FrameH),
	)

	logger.Notice("rendering frame")
	frame, stats, err := tr.RenderFrame(cam, opts)
	if err != nil {
		return err
	}
	displayFrameStats(stats)

	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, frame); err != nil {
		return fmt.Errorf("error encoding png file: %s", err.Error())
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1e6)
	return nil
}

func displayFrameStats(stats tracer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Rows", "Render time"})
	for idx, w := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", idx),
			fmt.Sprintf("%d", w.Rows),
			w.RenderTime.String(),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("%d rays, %d hits, %d shadowed", stats.Rays, stats.Hits, stats.Occluded),
		stats.RenderTime.String(),
	})
	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
