package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOptions describes the optional remote database.
type PostgresOptions struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// DSN renders the options as a postgres connection URL.
func (o PostgresOptions) DSN() string {
	port := o.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   o.Host + ":" + strconv.Itoa(port),
		Path:   "/" + o.Database,
	}
	if o.Username != "" {
		if o.Password != "" {
			u.User = url.UserPassword(o.Username, o.Password)
		} else {
			u.User = url.User(o.Username)
		}
	}
	mode := o.SSLMode
	if mode == "" {
		mode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": {mode}}.Encode()
	return u.String()
}

// Postgres stores blobs in a remote postgres table.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects and makes sure the blobs table exists.
func NewPostgres(ctx context.Context, opts PostgresOptions) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	p := &Postgres{Pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS blobs (
			key        TEXT PRIMARY KEY,
			data       BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}

const pgUpsert = `
	INSERT INTO blobs (key, data, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`

func (p *Postgres) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := p.Pool.QueryRow(ctx, `SELECT data FROM blobs WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (p *Postgres) Save(ctx context.Context, key string, data []byte) error {
	_, err := p.Pool.Exec(ctx, pgUpsert, key, data)
	return err
}

// SaveBatch writes every blob in one transaction.
func (p *Postgres) SaveBatch(ctx context.Context, blobs map[string][]byte) error {
	return pgx.BeginFunc(ctx, p.Pool, func(tx pgx.Tx) error {
		for key, data := range blobs {
			if _, err := tx.Exec(ctx, pgUpsert, key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) Close() {
	p.Pool.Close()
}
