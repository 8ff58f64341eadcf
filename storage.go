package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/turbekoff/staminabot/pkg/card"
)

type storage struct {
	kv    card.KV
	file  *card.FileKV
	close func() error
}

func openStorage(ctx context.Context, cfg StorageConfig) (*storage, error) {
	switch cfg.Backend {
	case "memory":
		return &storage{kv: card.NewMemoryKV(), close: func() error { return nil }}, nil

	case "", "file":
		kv, err := card.NewFileKV(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return &storage{kv: kv, file: kv, close: func() error { return nil }}, nil

	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = filepath.Join(cfg.Dir, "stamina.db")
			if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		kv, err := card.OpenSQLKV(ctx, card.DialectSQLite, dsn)
		if err != nil {
			return nil, err
		}
		return &storage{kv: kv, close: kv.Close}, nil

	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres storage requires STAMINA_DSN")
		}
		kv, err := card.OpenSQLKV(ctx, card.DialectPostgres, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &storage{kv: kv, close: kv.Close}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// watchPath is the file to watch for outside changes to key, or "" when the
// backend is not file based.
func (s *storage) watchPath(key string) string {
	if s.file == nil {
		return ""
	}
	return s.file.Path(key)
}
