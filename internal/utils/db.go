// 包 utils：Postgres/Redis 连接工具，统一环境变量读取
package utils

import (
	"database/sql"
	"net/url"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

// PGParams：连接参数，空字段按环境变量与默认值补齐
type PGParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

func envOr(v, key, def string) string {
	if v != "" {
		return v
	}
	if e := os.Getenv(key); e != "" {
		return e
	}
	return def
}

// BuildPostgresDSN：参数优先，其次 PG_* 环境变量，最后默认值
func BuildPostgresDSN(p PGParams) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     envOr(p.Host, "PG_HOST", "localhost") + ":" + envOr(p.Port, "PG_PORT", "5432"),
		Path:     "/" + envOr(p.DB, "PG_DB", "polydict"),
		RawQuery: "sslmode=" + envOr(p.SSLMode, "PG_SSLMODE", "disable"),
	}
	user := envOr(p.User, "PG_USER", "postgres")
	if pass := envOr(p.Password, "PG_PASSWORD", ""); pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

func BuildPostgresDSNFromEnv() string { return BuildPostgresDSN(PGParams{}) }

// OpenPostgres：打开连接池，PG_MAX_OPEN_CONNS/PG_MAX_IDLE_CONNS 可调
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	maxOpen := 10
	maxIdle := 5
	if v := os.Getenv("PG_MAX_OPEN_CONNS"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			maxOpen = n
		}
	}
	if v := os.Getenv("PG_MAX_IDLE_CONNS"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			maxIdle = n
		}
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, nil
}

func OpenPostgresFromEnv() (*sql.DB, error) {
	return OpenPostgres(BuildPostgresDSNFromEnv())
}
