// 包 ingest：GeoJSON 多边形数据集拉取与批量导入 PostgreSQL，作为 postgresql 数据源的离线数据通道
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"polydict/internal/logger"
	"polydict/internal/migrate"
	"polydict/internal/structure"
	"strings"

	"github.com/lib/pq"
	"github.com/paulmach/orb/geojson"
)

// BatchSize：每批提交的行数
const BatchSize = 5000

// Target：导入目标表
type Target struct {
	Table     string
	KeyColumn string
	Structure *structure.Structure
}

func (t Target) insertSQL() string {
	cols := []string{pq.QuoteIdentifier(t.KeyColumn)}
	ph := []string{"$1"}
	for i, a := range t.Structure.Attributes {
		cols = append(cols, pq.QuoteIdentifier(a.Name))
		ph = append(ph, fmt.Sprintf("$%d", i+2))
	}
	return "INSERT INTO " + migrate.QuoteTable(t.Table) + "(" + strings.Join(cols, ",") + ") VALUES(" + strings.Join(ph, ",") + ")"
}

// Fetch：读取 http(s) 地址或本地文件
func Fetch(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: bad status %d", src, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Import：解析 GeoJSON 并写入目标表
// 背景：BatchSize 行为一批提交，降低锁持有与 WAL 压力；replace=true 时在第一批事务内先清空表，
// 读方在首批提交前仍看到旧数据。
// 异常：解析失败/数据库错误直接返回，已提交的批次不回滚（交由调度层重试）
func Import(ctx context.Context, db *sql.DB, t Target, data []byte, replace bool) (int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return 0, err
	}
	recs, err := records(fc, t.Structure)
	if err != nil {
		return 0, err
	}
	if err := migrate.EnsurePolygonTable(db, t.Table, t.KeyColumn, t.Structure); err != nil {
		return 0, err
	}
	logger.L().Info("ingest_start", "table", t.Table, "features", len(recs), "replace", replace)

	begin := func() (*sql.Tx, *sql.Stmt, error) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return nil, nil, err
		}
		stmt, err := tx.PrepareContext(ctx, t.insertSQL())
		if err != nil {
			_ = tx.Rollback()
			return nil, nil, err
		}
		return tx, stmt, nil
	}
	tx, stmt, err := begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()
	if replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+migrate.QuoteTable(t.Table)); err != nil {
			return 0, err
		}
	}

	count := 0
	args := make([]any, 1+len(t.Structure.Attributes))
	for _, r := range recs {
		args[0] = r.WKT
		copy(args[1:], r.Values)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return count, err
		}
		count++
		if count%BatchSize == 0 {
			logger.L().Info("ingest_progress", "table", t.Table, "count", count)
			if err := tx.Commit(); err != nil {
				return count, err
			}
			if tx, stmt, err = begin(); err != nil {
				return count, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return count, err
	}
	logger.L().Info("ingest_done", "table", t.Table, "count", count)
	return count, nil
}

// FetchAndImport：拉取并整表替换
func FetchAndImport(ctx context.Context, db *sql.DB, t Target, src string) (int, error) {
	data, err := Fetch(ctx, src)
	if err != nil {
		return 0, err
	}
	return Import(ctx, db, t, data, true)
}

// EnsureInitialized：目标表为空或不存在时执行一次初始化导入
// 约束：表非空时不做任何写入；src 为空时只建表
func EnsureInitialized(ctx context.Context, db *sql.DB, t Target, src string) error {
	if err := migrate.EnsurePolygonTable(db, t.Table, t.KeyColumn, t.Structure); err != nil {
		return err
	}
	var c int64
	err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+migrate.QuoteTable(t.Table)).Scan(&c)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if c > 0 || src == "" {
		return nil
	}
	_, err = FetchAndImport(ctx, db, t, src)
	return err
}
