package main

import (
	"os"

	"github.com/marcioAlmada/embree/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "embree"
	app.Usage = "triangle intersection kernels with a demo ray tracer"
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
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a frame of the built-in demo scene",
			Description: `
Trace one primary ray per pixel through a small demo scene that mixes
static, moving, masked and filtered geometry, shade hits with a single
shadow ray and write the frame out as a png image.`,
			Flags: []cli.Flag{
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
				cli.BoolFlag{
					Name:  "packets",
					Usage: "trace 8-wide ray packets instead of single rays",
				},
				cli.Float64Flag{
					Name:  "time",
					Value: 0.0,
					Usage: "shutter time for motion blur geometry (0 to 1)",
				},
				cli.BoolFlag{
					Name:  "cull",
					Usage: "cull back-facing triangles",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
		{
			Name:  "bench",
			Usage: "benchmark the intersector adapter paths",
			Description: `
Time every single-ray, packet and packet-lane adapter path of the
static and motion intersectors against a synthetic triangle soup and
report the throughput of each path.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "iterations, n",
					Value: 20000,
					Usage: "iterations per adapter path",
				},
			},
			Action: cmd.Bench,
		},
	}

	app.Run(os.Args)
}
