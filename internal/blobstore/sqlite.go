package blobstore

import (
	"context"
	"database/sql"

	"github.com/jask/pocketledger/internal/database"
	"github.com/jask/pocketledger/internal/database/repository"
)

// SQLite stores blobs in the local sqlite database.
type SQLite struct {
	db    *sql.DB
	blobs *repository.BlobRepo
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, blobs: repository.NewBlobRepo(db)}
}

func (s *SQLite) Load(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.blobs.Get(ctx, key)
	if err != nil || b == nil {
		return nil, false, err
	}
	return b.Data, true, nil
}

func (s *SQLite) Save(ctx context.Context, key string, data []byte) error {
	return s.blobs.Upsert(ctx, repository.Blob{Key: key, Data: data})
}

// SaveBatch writes every blob in one transaction.
func (s *SQLite) SaveBatch(ctx context.Context, blobs map[string][]byte) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for key, data := range blobs {
			if err := s.blobs.UpsertTx(ctx, tx, repository.Blob{Key: key, Data: data}); err != nil {
				return err
			}
		}
		return nil
	})
}
