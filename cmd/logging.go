package cmd

import (
	"github.com/lsp-plugins/lsp-dsp-units-sub001/log"
	"github.com/urfave/cli"
)

var logger = log.New("rtrace")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
