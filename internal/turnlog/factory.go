package turnlog

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when configured, otherwise in-memory.
func NewStore(ctx context.Context, databaseURL string, inMemoryLimit int) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(inMemoryLimit), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
