// m3gtool is a CLI utility for inspecting and rewriting M3G scene files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/m3g/internal/config"
	"github.com/Faultbox/m3g/internal/logger"
)

// app carries what every subcommand needs.
type app struct {
	cfg   *config.Config
	out   io.Writer
	style styles
	log   *zap.Logger
}

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Output.Color); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		cfg:   cfg,
		out:   os.Stdout,
		style: newStyles(cfg.Output.Color),
		log:   logger.For("m3gtool"),
	}

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, a.style.err.Render("Error: "+err.Error()))
		stop()
		logger.Sync()
		os.Exit(1)
	}
}

// run dispatches a subcommand.
func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "info":
		return a.cmdInfo(ctx, args)
	case "dump", "ls":
		return a.cmdDump(ctx, args)
	case "verify":
		return a.cmdVerify(ctx, args)
	case "rewrite":
		return a.cmdRewrite(ctx, args)
	case "config":
		return a.cmdConfig(args)
	case "help", "-h", "--help":
		printUsage(a.out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `m3gtool - M3G (JSR-184) scene file utility

Usage:
  m3gtool [global options] <command> [options]

Commands:
  info <file.m3g>                       Show header, sections and object counts
  dump [-kind K] [-n N] <file.m3g>      List objects and their references
  verify <file.m3g>                     Check every record re-encodes byte for byte
  rewrite [-store] [-level N] <in> <out> Decode and write the scene back out
  config [path]                         Save the effective configuration

Global options:
  -config <path>   Config file (default: ./m3gtool.yaml, then user config dir)
  -lenient         Skip bad records and null dangling references
  -strict          Abort on the first error
  -parallel <n>    Inflate sections and link objects on n goroutines
  -debug           Debug logging
  -log-file <path> Also log to a rotated file
  -no-color        Plain output

Examples:
  m3gtool info scene.m3g
  m3gtool -lenient dump -kind Mesh scene.m3g
  m3gtool rewrite -level 9 scene.m3g packed.m3g`)
}
