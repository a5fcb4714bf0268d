package repository

import "time"

// Blob represents a serialized collection row.
type Blob struct {
	Key       string
	Data      []byte
	UpdatedAt time.Time
}
