package main

import (
	"context"
	"os"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/traceability"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/store"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/config"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/logger"
)

// loadConfig se reemplaza en tests.
var loadConfig = config.Load

// openService abre el almacenamiento configurado; los logs van a stderr para no
// mezclarse con la salida del comando.
var openService = func(ctx context.Context) (*traceability.BatchTraceabilityService, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Output: os.Stderr})
	st, err := store.Open(ctx, cfg, log.Component("store"))
	if err != nil {
		return nil, nil, err
	}
	return traceability.NewBatchTraceabilityService(st.Repo, log.Zerolog(), nil), st.Close, nil
}
