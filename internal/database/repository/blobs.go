package repository

import (
	"context"
	"database/sql"
)

// BlobRepo handles the key/value blobs table.
type BlobRepo struct {
	db *sql.DB
}

func NewBlobRepo(db *sql.DB) *BlobRepo {
	return &BlobRepo{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const upsertBlob = `
	INSERT INTO blobs(key, data, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
	 data=excluded.data,
	 updated_at=CURRENT_TIMESTAMP;
	`

func (r *BlobRepo) Upsert(ctx context.Context, b Blob) error {
	return upsert(ctx, r.db, b)
}

// UpsertTx writes b inside an open transaction.
func (r *BlobRepo) UpsertTx(ctx context.Context, tx *sql.Tx, b Blob) error {
	return upsert(ctx, tx, b)
}

func upsert(ctx context.Context, ex execer, b Blob) error {
	_, err := ex.ExecContext(ctx, upsertBlob, b.Key, b.Data)
	return err
}

func (r *BlobRepo) Get(ctx context.Context, key string) (*Blob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, data, updated_at FROM blobs WHERE key = ?`, key)
	var b Blob
	if err := row.Scan(&b.Key, &b.Data, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
