package main

import (
	"context"
	"time"

	"github.com/nvidela/shop-assistant/config"
	"github.com/nvidela/shop-assistant/internal/app"
	"github.com/nvidela/shop-assistant/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	assistant := app.New(sigCtx, cfg)

	assistant.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	assistant.Close(ctx)
}
