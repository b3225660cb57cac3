package main

import (
	"os"

	"github.com/lsp-plugins/lsp-dsp-units-sub001/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "rtrace"
	app.Usage = "render room impulse responses using acoustic ray tracing"
	app.Version = "0.1.0"
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
			Name:  "trace",
			Usage: "trace a scene into an impulse response",
			Description: `
Load a wavefront obj scene, propagate sound energy from a source through
the scene via recursive view splitting and reflection, and write the
captured impulse response to a wav file.`,
			ArgsUsage: "scene_file.obj",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "source",
					Value: "0,0,0",
					Usage: "source position as x,y,z",
				},
				cli.StringFlag{
					Name:  "capture",
					Value: "0,0,0",
					Usage: "capture position as x,y,z",
				},
				cli.Float64Flag{
					Name:  "radius",
					Value: 0.3,
					Usage: "capture sphere radius in meters",
				},
				cli.IntFlag{
					Name:  "rate",
					Value: 48000,
					Usage: "output sample rate",
				},
				cli.IntFlag{
					Name:  "threads",
					Value: 4,
					Usage: "worker count",
				},
				cli.IntFlag{
					Name:  "detalization",
					Value: 8,
					Usage: "emission cone subdivision granularity",
				},
				cli.IntFlag{
					Name:  "reflections",
					Value: 8,
					Usage: "maximum reflection count",
				},
				cli.IntFlag{
					Name:  "r-min",
					Value: -1,
					Usage: "minimum reflection index accepted by the capture (-1 = any)",
				},
				cli.IntFlag{
					Name:  "r-max",
					Value: -1,
					Usage: "maximum reflection index accepted by the capture (-1 = any)",
				},
				cli.Float64Flag{
					Name:  "energy",
					Value: 1.0,
					Usage: "initial energy per ray bundle",
				},
				cli.Float64Flag{
					Name:  "threshold",
					Value: 1e-4,
					Usage: "energy threshold terminating propagation",
				},
				cli.Float64Flag{
					Name:  "absorption",
					Value: 0.1,
					Usage: "surface absorption applied to all objects",
				},
				cli.Float64Flag{
					Name:  "diffusion",
					Value: 0.0,
					Usage: "surface diffusion applied to all objects",
				},
				cli.BoolFlag{
					Name:  "normalize",
					Usage: "rescale the result so the peak hits unit level",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "impulse.wav",
					Usage: "wav filename for the rendered impulse response",
				},
			},
			Action: cmd.TraceScene,
		},
		{
			Name:        "inspect",
			Usage:       "inspect scene geometry and its partition tree",
			Description: `Load a wavefront obj scene and report object, triangle and BSP node counts.`,
			ArgsUsage:   "scene_file.obj",
			Action:      cmd.InspectScene,
		},
	}

	app.Run(os.Args)
}
