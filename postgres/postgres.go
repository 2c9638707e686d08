package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/technigo/happy-thoughts-api/api"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// IDTag is the validator tag matching the ids this store hands out.
const IDTag = "uuid"

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Open prepares a connection pool for connStr. No connection is made until
// the first query or Ping, but a malformed connStr is reported here.
func Open(connStr string) (pg *Postgres, err error) {
	// pgdriver panics on a DSN it cannot parse.
	defer func() {
		if r := recover(); r != nil {
			pg, err = nil, fmt.Errorf("parse dsn: %v", r)
		}
	}()

	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	return &Postgres{
		bun: bun.NewDB(sqlDB, pgdialect.New()),
	}, nil
}

// Ping checks that the database is reachable.
func (pg *Postgres) Ping(ctx context.Context) error {
	if err := pg.bun.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (pg *Postgres) Close() error {
	return pg.bun.Close()
}

// EnsureSchema creates the thoughts table if it does not exist.
func (pg *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := pg.bun.NewCreateTable().
		Model((*thought)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// ListThoughts returns the thoughts matching f, newest first.
func (pg *Postgres) ListThoughts(ctx context.Context, f api.Filter) ([]api.Thought, error) {
	var rows []thought
	q := pg.bun.NewSelect().
		Model(&rows).
		Order("created_at DESC")

	if f.Hearts != nil {
		q = q.Where("hearts = ?", *f.Hearts)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]api.Thought, len(rows))
	for i, r := range rows {
		out[i] = r.APIThought()
	}
	return out, nil
}

// GetThought returns the thought with the given id.
func (pg *Postgres) GetThought(ctx context.Context, id string) (api.Thought, error) {
	if _, err := uuid.Parse(id); err != nil {
		return api.Thought{}, fmt.Errorf("%w: %v", api.ErrNotFound, err)
	}

	var row thought
	err := pg.bun.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Thought{}, api.ErrNotFound
	}
	if err != nil {
		return api.Thought{}, fmt.Errorf("scan: %w", err)
	}
	return row.APIThought(), nil
}

// InsertThought inserts a thought into the database. The returned thought
// holds auto generated fields, such as the id.
func (pg *Postgres) InsertThought(ctx context.Context, t api.Thought) (api.Thought, error) {
	row := newThought(t)
	if _, err := pg.bun.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		if isIntegrityViolation(err) {
			return api.Thought{}, fmt.Errorf("%w: %v", api.ErrInvalidThought, err)
		}
		return api.Thought{}, fmt.Errorf("insert: %w", err)
	}
	return row.APIThought(), nil
}

// DeleteThought removes the thought with the given id.
func (pg *Postgres) DeleteThought(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %v", api.ErrNotFound, err)
	}

	exists, err := pg.bun.NewSelect().Model((*thought)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return fmt.Errorf("exists: %w", err)
	}
	if !exists {
		return api.ErrNotFound
	}

	if _, err := pg.bun.NewDelete().Model((*thought)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Reset deletes every thought and inserts thoughts in a single transaction.
// Ids are always generated by the database.
func (pg *Postgres) Reset(ctx context.Context, thoughts []api.Thought) error {
	return pg.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*thought)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		if len(thoughts) == 0 {
			return nil
		}

		rows := make([]*thought, len(thoughts))
		for i, t := range thoughts {
			rows[i] = newThought(t)
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
}

func isIntegrityViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}
