// Package store abre el BatchRepository según el driver configurado.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/memory"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/postgres"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/config"
)

// Store repositorio abierto más su función de cierre.
type Store struct {
	Repo   repository.BatchRepository
	Driver string
	close  func()
}

// Close libera conexiones; seguro de llamar más de una vez.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

// Open abre el repositorio del driver indicado. Con postgres aplica las migraciones.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory, "":
		log.Warn().Msg("almacenamiento en memoria: los lotes se pierden al reiniciar")
		return &Store{Repo: memory.NewBatchRepository(), Driver: config.StoreMemory}, nil

	case config.StoreSQLite:
		repo, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("abrir sqlite: %w", err)
		}
		log.Info().Str("path", repo.Path()).Int("batches", repo.Len()).Msg("lotes cargados desde sqlite")
		return &Store{Repo: repo, Driver: config.StoreSQLite, close: func() {
			if err := repo.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar sqlite")
			}
		}}, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		log.Info().Msg("PostgreSQL listo")
		return &Store{Repo: postgres.NewBatchRepository(pool), Driver: config.StorePostgres, close: pool.Close}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento desconocido %q", cfg.Store.Driver)
}
