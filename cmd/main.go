// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"polydict/internal/api"
	"polydict/internal/config"
	"polydict/internal/dictionary"
	"polydict/internal/ingest"
	"polydict/internal/loader"
	"polydict/internal/logger"
	"polydict/internal/metrics"
	"polydict/internal/middleware"
	"polydict/internal/polygon"
	"polydict/internal/source"
	"polydict/internal/utils"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/oschwald/geoip2-golang"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)

	cfgPath := os.Getenv("POLYDICT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		l.Error("config_load_error", "path", cfgPath, "err", err)
		os.Exit(1)
	}
	l.Info("config_load_ok", "path", cfgPath, "dictionaries", cfg.Keys(loader.DictionariesPrefix))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 背景：ingest 目标表为空时先导入一次，保证 postgresql 数据源的字典首次加载即有数据
	ingestDict := os.Getenv("INGEST_DICT")
	ingestSrc := os.Getenv("INGEST_SRC")
	var target ingest.Target
	var ingestDSN string
	var ingestDB *sql.DB
	if ingestDict != "" {
		if target, ingestDSN, err = ingest.TargetFromConfig(cfg, ingestDict); err != nil {
			l.Error("ingest_config_error", "dictionary", ingestDict, "err", err)
			os.Exit(1)
		}
		db, err := utils.OpenPostgres(ingestDSN)
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := ingest.EnsureInitialized(ctx, db, target, ingestSrc); err != nil {
			l.Error("ingest_init_error", "dictionary", ingestDict, "err", err)
			os.Exit(1)
		}
		l.Info("ingest_init_ok", "dictionary", ingestDict, "table", target.Table)
		ingestDB = db
	}

	f := dictionary.Instance()
	polygon.Register(f)
	dctx := &dictionary.Context{Sources: source.NewDefaultFactory()}
	reg, err := loader.LoadAll(ctx, f, cfg, dctx)
	if err != nil {
		l.Error("dictionary_load_error", "err", err)
		os.Exit(1)
	}
	reg.Start(ctx)
	if ingestDB != nil && ingestSrc != "" && os.Getenv("INGEST_SCHEDULE") != "false" {
		ingest.StartWeekly(ctx, ingestDB, target, ingestSrc, func(ctx context.Context) {
			if _, err := reg.Reload(ctx, ingestDict); err != nil {
				l.Error("ingest_reload_error", "dictionary", ingestDict, "err", err)
			}
		})
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	// 背景：GeoIP 库可选；缺失时 /find_ip 返回 503，不影响坐标查询
	var loc api.Locator
	if p := os.Getenv("GEOIP_DB_PATH"); p != "" {
		gr, err := geoip2.Open(p)
		if err != nil {
			l.Error("geoip_open_error", "path", p, "err", err)
		} else {
			defer gr.Close()
			loc = gr
			l.Info("geoip_ready", "path", p)
		}
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(reg, rc, loc)
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	certPath, keyPath := os.Getenv("TLS_CERT_PATH"), os.Getenv("TLS_KEY_PATH")
	if certPath != "" && keyPath != "" {
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		err = s.ListenAndServeTLS(certPath, keyPath)
	} else {
		l.Info("listening", "addr", addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
	}
	reg.Wait()
	l.Info("shutdown_done")
}
