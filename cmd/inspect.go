package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/lsp-plugins/lsp-dsp-units-sub001/rt/bsp"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/scene/reader"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/types"
)

// Load a scene and report its geometry together with the partition tree
// it produces.
func InspectScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}

	bounds := types.NewAABB()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Object", "Triangles"})
	for _, obj := range sc.Objects {
		bounds.ExtendBox(obj.BBox())
		table.Append([]string{obj.Name, strconv.Itoa(len(obj.Triangles))})
	}
	table.Append([]string{"total", strconv.Itoa(sc.TriangleCount())})
	table.Render()

	if len(sc.Objects) > 0 {
		size := bounds.Max.Sub(bounds.Min)
		fmt.Printf("scene bounds: %.2f x %.2f x %.2f m\n", size[0], size[1], size[2])
	}

	bspCtx := bsp.NewContext(0)
	for id, obj := range sc.Objects {
		if err = bspCtx.AddObject(obj, int32(id), obj.Transform, types.Vec3{1, 1, 1}); err != nil {
			return err
		}
	}
	if err = bspCtx.BuildTree(); err != nil {
		return err
	}

	fmt.Printf("partition tree: %d nodes, %d triangles after splitting (%d source)\n",
		bspCtx.NumNodes(), bspCtx.NumTriangles(), sc.TriangleCount())

	return nil
}
