package cmd

import (
	"github.com/achilleasa/hitmiss/log"
	"github.com/urfave/cli"
)

var logger = log.New("hitmiss")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	if name := ctx.GlobalString("log-level"); name != "" {
		level, err := log.ParseLevel(name)
		if err != nil {
			logger.Warningf("%s; keeping current log level", err)
			return
		}
		log.SetLevel(level)
	}
}
