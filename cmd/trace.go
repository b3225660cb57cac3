package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/lsp-plugins/lsp-dsp-units-sub001/rt"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/sample"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/scene/reader"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/types"
)

// Trace an impulse response through a scene and write it out as WAV.
func TraceScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}

	srcPos, err := parseVec3Flag(ctx.String("source"))
	if err != nil {
		return fmt.Errorf("invalid --source: %s", err)
	}
	capPos, err := parseVec3Flag(ctx.String("capture"))
	if err != nil {
		return fmt.Errorf("invalid --capture: %s", err)
	}

	rate := ctx.Int("rate")
	out := sample.New(rate, 1)

	eng := rt.New()
	eng.SetScene(sc)
	eng.SetSampleRate(rate)
	eng.SetEnergyThreshold(float32(ctx.Float64("threshold")))
	eng.SetDetalization(ctx.Int("detalization"))
	eng.SetMaxReflections(ctx.Int("reflections"))
	eng.SetNormalize(ctx.Bool("normalize"))
	eng.AddSource(rt.OmniSource(srcPos))

	capture := rt.NewCapture(capPos, types.Vec3{}, float32(ctx.Float64("radius")))
	capIdx := eng.AddCapture(capture)
	if err = eng.BindCapture(capIdx, out, 0, ctx.Int("r-min"), ctx.Int("r-max")); err != nil {
		return err
	}

	for id := range sc.Objects {
		eng.SetMaterial(int32(id), rt.Material{
			Absorption: float32(ctx.Float64("absorption")),
			Diffusion:  float32(ctx.Float64("diffusion")),
		})
	}

	lastPercent := -1
	eng.SetProgress(func(fraction float32) bool {
		if percent := int(fraction * 100); percent/10 > lastPercent/10 {
			lastPercent = percent
			logger.Noticef("tracing: %d%%", percent)
		}
		return true
	})

	if err = eng.Process(ctx.Int("threads"), float32(ctx.Float64("energy"))); err != nil {
		return err
	}

	displayTraceStats(eng.Stats())

	return writeWav(ctx.String("out"), out)
}

func displayTraceStats(stats rt.Stats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Counter", "Value"})
	table.Append([]string{"root tasks", strconv.FormatUint(stats.RootTasks, 10)})
	table.Append([]string{"local tasks", strconv.FormatUint(stats.LocalTasks, 10)})
	table.Append([]string{"triangles scanned", strconv.FormatUint(stats.Scanned, 10)})
	table.Append([]string{"culled", strconv.FormatUint(stats.Culled, 10)})
	table.Append([]string{"back-face culled", strconv.FormatUint(stats.CulledBack, 10)})
	table.Append([]string{"splits", strconv.FormatUint(stats.Splits, 10)})
	table.Append([]string{"reflections", strconv.FormatUint(stats.Reflections, 10)})
	table.Append([]string{"captured", strconv.FormatUint(stats.Captured, 10)})
	table.Render()
}

// Write the first channel of a sample as 24-bit PCM WAV.
func writeWav(path string, s *sample.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data := s.Data(0)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: s.Rate()},
		SourceBitDepth: 24,
		Data:           make([]int, len(data)),
	}
	for i, v := range data {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		buf.Data[i] = int(v * 8388607)
	}

	enc := wav.NewEncoder(f, s.Rate(), 24, 1, 1)
	if err = enc.Write(buf); err != nil {
		enc.Close()
		return err
	}

	logger.Noticef("wrote %d samples to %s", len(data), path)
	return enc.Close()
}

// Parse an "x,y,z" flag value.
func parseVec3Flag(value string) (types.Vec3, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return types.Vec3{}, fmt.Errorf("expected x,y,z; got %q", value)
	}

	var v types.Vec3
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return types.Vec3{}, fmt.Errorf("could not parse component %q", part)
		}
		v[i] = float32(val)
	}
	return v, nil
}
