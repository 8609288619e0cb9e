// Package sqlite persiste los lotes en un archivo SQLite (driver modernc, sin cgo).
// Las lecturas se sirven desde el repositorio en memoria; cada cambio confirmado se
// escribe antes en la tabla batches como una fila JSON (write-through).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // driver sqlite en Go puro

	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/agro-trazabilidad-api/internal/infrastructure/memory"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// DefaultPath archivo usado cuando no se configura ninguno.
const DefaultPath = "data/batches.db"

// BatchRepo repositorio en memoria respaldado por SQLite.
type BatchRepo struct {
	*memory.BatchRepo
	db   *sql.DB
	path string
}

// Open abre (o crea) la base y carga los lotes persistidos en orden de inserción.
func Open(path string, opts ...memory.Option) (*BatchRepo, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("crear directorios: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Un solo escritor: el hook corre bajo el lock del repositorio en memoria.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS batches (
		id      TEXT PRIMARY KEY,
		seq     INTEGER NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("crear tabla batches: %w", err)
	}

	r := &BatchRepo{db: db, path: path}
	opts = append(opts, memory.WithCommitHook(r.persist))
	r.BatchRepo = memory.NewBatchRepository(opts...)
	if err := r.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *BatchRepo) load() (retErr error) {
	rows, err := r.db.Query(`SELECT id, payload FROM batches ORDER BY seq ASC`)
	if err != nil {
		return fmt.Errorf("select batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batches []*entity.Batch
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		var b entity.Batch
		if err := json.Unmarshal(payload, &b); err != nil {
			return fmt.Errorf("decode lote %s: %w", id, err)
		}
		batches = append(batches, &b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("leer batches: %w", err)
	}
	if len(batches) == 0 {
		return nil
	}
	if err := r.Restore(batches); err != nil {
		return fmt.Errorf("restaurar lotes: %w", err)
	}

	// Renumera seq a 1..n para que coincida con la secuencia en memoria tras borrados previos.
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for i, b := range batches {
		if _, err := tx.Exec(`UPDATE batches SET seq = ? WHERE id = ?`, i+1, b.ID); err != nil {
			return fmt.Errorf("renumerar %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}

// persist es el CommitHook: si la escritura falla el cambio en memoria se descarta.
func (r *BatchRepo) persist(ctx context.Context, ch memory.Change) error {
	switch ch.Kind {
	case memory.ChangeDelete:
		if _, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, ch.Batch.ID); err != nil {
			return fmt.Errorf("delete batch: %w", err)
		}
		return nil
	default:
		data, err := json.Marshal(ch.Batch)
		if err != nil {
			return fmt.Errorf("encode batch: %w", err)
		}
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO batches(id, seq, payload) VALUES(?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET seq = excluded.seq, payload = excluded.payload`,
			ch.Batch.ID, ch.Seq, data); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		return nil
	}
}

// Close cierra la base.
func (r *BatchRepo) Close() error { return r.db.Close() }

// DB expone el *sql.DB para pruebas de integración.
func (r *BatchRepo) DB() *sql.DB { return r.db }

// Path ruta del archivo configurado.
func (r *BatchRepo) Path() string { return r.path }
