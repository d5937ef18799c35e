// cmd/passlink/main.go
package main

import (
	"context"

	"passlink/internal/wallet"
	"passlink/pkg/config"
	"passlink/pkg/logger"
	"passlink/pkg/tracing"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("config", "err", err)
	}
	typ, err := wallet.ParseObjectType(cfg.ObjectType)
	if err != nil {
		log.Fatalw("config", "err", err)
	}

	ctx := context.Background()
	shutdown := tracing.Init(ctx, "passlink", log)
	defer shutdown(ctx)

	account, err := wallet.LoadServiceAccount(cfg.KeyFile)
	if err != nil {
		log.Fatalw("credentials", "err", err)
	}
	httpClient, err := wallet.NewAuthenticatedClient(ctx, cfg.KeyFile, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalw("credentials", "err", err)
	}
	// The batch section runs on its own independently configured client.
	batchClient, err := wallet.NewAuthenticatedClient(ctx, cfg.KeyFile, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalw("credentials", "err", err)
	}

	client := wallet.NewClient(cfg.APIBase, typ,
		wallet.WithHTTPClient(httpClient),
		wallet.WithLogger(log),
	)
	wf := wallet.NewWorkflow(cfg, typ, account, client, batchClient, log)
	if err := wf.Run(ctx); err != nil {
		log.Fatalw("wallet sequence failed", "err", err)
	}
}
