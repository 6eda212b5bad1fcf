package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/xymaxim/fmtinfo/internal/app"
	"github.com/xymaxim/fmtinfo/internal/commands"
)

type CLI struct {
	commands.Globals

	Serve   commands.Serve   `cmd:"" help:"Start the HTTP server"`
	Info    commands.Info    `cmd:"" help:"Print the formats of a video"`
	Version commands.Version `cmd:"" help:"Show version information"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(
		&cli,
		kong.Name("fmtinfo"),
		kong.Description("Describe the downloadable formats of a video"),
		kong.UsageOnError(),
		commands.Vars,
		kong.DefaultEnvars("FMTINFO"),
		kong.Configuration(kong.JSON, "~/.config/fmtinfo/config.json"),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	app.NewLogger(os.Stderr, cli.Verbose)

	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
