package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// Key derives the cache key for a module source: the hex-encoded
// BLAKE3 hash of the raw bytes.
func Key(source []byte) string {
	sum := blake3.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Get looks up the cached output for a source key. The second return
// value reports whether the key was present.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT output_xz FROM artifacts WHERE source_hash = ?`, key,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}

	output, err := decompress(blob)
	if err != nil {
		return "", false, fmt.Errorf("cache entry for %s: %w", key, err)
	}
	return output, true, nil
}

// Put stores the output for a source key. Writing a key that is
// already present is a no-op: entries are immutable.
func (s *Store) Put(ctx context.Context, key, output string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}

	blob, err := compress(output)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, source_hash, output_xz)
		VALUES (?, ?, ?)
		ON CONFLICT(source_hash) DO NOTHING
	`, id.String(), key, blob)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

func compress(text string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(blob []byte) (string, error) {
	r, err := xz.NewReader(bytes.NewReader(blob))
	if err != nil {
		return "", fmt.Errorf("decompress: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decompress: %w", err)
	}
	return string(data), nil
}
