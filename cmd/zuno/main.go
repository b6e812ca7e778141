package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zuno-wallet/zuno-go/internal/buildinfo"
	"github.com/zuno-wallet/zuno-go/internal/client/cli"
	"github.com/zuno-wallet/zuno-go/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
