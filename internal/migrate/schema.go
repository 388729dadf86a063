// 包 migrate：为 postgresql 数据源准备多边形表结构
package migrate

import (
	"database/sql"
	"fmt"
	"polydict/internal/logger"
	"polydict/internal/structure"
	"strings"

	"github.com/lib/pq"
)

// SQLType：属性类型到列类型的映射
// 约束：仅支持标量；UInt64 超出 BIGINT 范围，使用 NUMERIC(20,0)。
func SQLType(t structure.Type) (string, error) {
	switch t.Name {
	case "Float32":
		return "REAL", nil
	case "Float64":
		return "DOUBLE PRECISION", nil
	case "Int8", "Int16", "UInt8":
		return "SMALLINT", nil
	case "Int32", "UInt16":
		return "INTEGER", nil
	case "Int64", "UInt32":
		return "BIGINT", nil
	case "UInt64":
		return "NUMERIC(20,0)", nil
	case "String":
		return "TEXT", nil
	}
	return "", fmt.Errorf("type %s cannot be stored in a postgresql column", t)
}

// QuoteTable：schema.table 逐段加引号
func QuoteTable(t string) string {
	parts := strings.Split(t, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// PolygonTableDDL：多边形表建表语句
// 背景：键列以 WKT 文本保存（POLYGON/MULTIPOLYGON），不依赖 PostGIS 扩展；属性列与字典结构同名。
func PolygonTableDDL(table, keyColumn string, st *structure.Structure) ([]string, error) {
	cols := []string{
		"_pk BIGSERIAL PRIMARY KEY",
		pq.QuoteIdentifier(keyColumn) + " TEXT NOT NULL",
	}
	for _, a := range st.Attributes {
		if a.Name == "_pk" || a.Name == keyColumn {
			return nil, fmt.Errorf("attribute name %q collides with a reserved column", a.Name)
		}
		typ, err := SQLType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
		}
		cols = append(cols, pq.QuoteIdentifier(a.Name)+" "+typ)
	}
	return []string{
		"CREATE TABLE IF NOT EXISTS " + QuoteTable(table) + " (\n    " + strings.Join(cols, ",\n    ") + "\n)",
	}, nil
}

// 背景：首次运行自动创建所需表，保障后续导入与字典加载
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；已有表的列不做校验与变更
func EnsurePolygonTable(db *sql.DB, table, keyColumn string, st *structure.Structure) error {
	stmts, err := PolygonTableDDL(table, keyColumn, st)
	if err != nil {
		return err
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "table", table, "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done", "table", table)
	return nil
}
