package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jupiterclapton/cenackle/services/wall-service/config"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/secondary/archive"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/telemetry"
)

// Exporte le feed en JSONL compressé zstd (sans les usernames).
func main() {
	var out string
	flag.StringVar(&out, "out", "data.jsonl.zst", "output file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.Env)

	ctx := context.Background()
	rdb, err := repository.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	f, err := os.Create(out)
	if err != nil {
		slog.Error("Unable to create output", "path", out, "error", err)
		os.Exit(1)
	}

	n, err := archive.Dump(ctx, repository.NewRedisPostRepo(rdb), f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		slog.Error("Dump failed", "written", n, "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Dump complete", "path", out, "posts", n)
}
