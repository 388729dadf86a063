// 数据导入工具：拉取 GeoJSON 多边形数据集并整表写入字典 postgresql 数据源所读的表
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"polydict/internal/config"
	"polydict/internal/ingest"
	"polydict/internal/logger"
	"polydict/internal/utils"
	"syscall"

	"github.com/joho/godotenv"
)

// 用法：polygon-ingest <dictionary> <file|url>；也可用 INGEST_DICT/INGEST_SRC 指定
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()

	name, src := os.Getenv("INGEST_DICT"), os.Getenv("INGEST_SRC")
	if len(os.Args) > 2 {
		name, src = os.Args[1], os.Args[2]
	}
	if name == "" || src == "" {
		log.Fatal("usage: polygon-ingest <dictionary> <file|url>")
	}
	cfgPath := os.Getenv("POLYDICT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	t, dsn, err := ingest.TargetFromConfig(cfg, name)
	if err != nil {
		log.Fatal(err)
	}
	db, err := utils.OpenPostgres(dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	n, err := ingest.FetchAndImport(ctx, db, t, src)
	if err != nil {
		l.Error("ingest_error", "dictionary", name, "count", n, "err", err)
		os.Exit(1)
	}
	l.Info("ingest_ok", "dictionary", name, "table", t.Table, "count", n)
}
