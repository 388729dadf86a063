package source

import (
	"context"
	"fmt"
	"polydict/internal/config"
	"polydict/internal/geo"
	"polydict/internal/logger"
	"polydict/internal/migrate"
	"polydict/internal/structure"
	"polydict/internal/utils"
	"strings"

	"github.com/lib/pq"
	"github.com/peterstace/simplefeatures/geom"
)

// 文档注释：Postgres 数据源
// 背景：键列保存 WKT 文本（POLYGON/MULTIPOLYGON），属性列与字典属性同名；
// 也可通过 query 自定义查询，此时第一列为 WKT，其后按属性声明顺序给出。
// 约束：每次 Load 打开连接、查询后立即关闭，不在字典实例间共享连接池。
type postgres struct {
	dsn    string
	table  string
	keyCol string
	where  string
	query  string
	st     *structure.Structure
}

func createPostgres(ctx context.Context, _ string, cfg *config.Config, prefix string, st *structure.Structure, check bool) (Source, error) {
	if _, err := keyName(st); err != nil {
		return nil, err
	}
	s := &postgres{
		dsn:    PostgresDSN(cfg, prefix),
		table:  cfg.GetString(config.Join(prefix, "table"), ""),
		keyCol: cfg.GetString(config.Join(prefix, "key_column"), st.Key[0].Name),
		where:  cfg.GetString(config.Join(prefix, "where"), ""),
		query:  cfg.GetString(config.Join(prefix, "query"), ""),
		st:     st,
	}
	if s.table == "" && s.query == "" {
		return nil, fmt.Errorf("%s: either table or query is required", prefix)
	}
	if check {
		db, err := utils.OpenPostgres(s.dsn)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// PostgresDSN：postgresql 数据源配置中的连接串；未给出 dsn 时由 host/port/user 等字段拼装，缺省项回退 PG_* 环境变量
func PostgresDSN(cfg *config.Config, prefix string) string {
	if dsn := cfg.GetString(config.Join(prefix, "dsn"), ""); dsn != "" {
		return dsn
	}
	return utils.BuildPostgresDSN(utils.PGParams{
		Host:     cfg.GetString(config.Join(prefix, "host"), ""),
		Port:     cfg.GetString(config.Join(prefix, "port"), ""),
		User:     cfg.GetString(config.Join(prefix, "user"), ""),
		Password: cfg.GetString(config.Join(prefix, "password"), ""),
		DB:       cfg.GetString(config.Join(prefix, "db"), ""),
		SSLMode:  cfg.GetString(config.Join(prefix, "sslmode"), ""),
	})
}

// SQL：实际执行的查询语句
func (s *postgres) SQL() string {
	if s.query != "" {
		return s.query
	}
	cols := []string{pq.QuoteIdentifier(s.keyCol)}
	for _, a := range s.st.Attributes {
		cols = append(cols, pq.QuoteIdentifier(a.Name))
	}
	q := "SELECT " + strings.Join(cols, ", ") + " FROM " + migrate.QuoteTable(s.table)
	if s.where != "" {
		q += " WHERE " + s.where
	}
	return q
}

func (s *postgres) Load(ctx context.Context) ([]Row, error) {
	db, err := utils.OpenPostgres(s.dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rs, err := db.QueryContext(ctx, s.SQL())
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	cols, err := rs.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) != len(s.st.Attributes)+1 {
		return nil, fmt.Errorf("query returned %d columns, expected %d", len(cols), len(s.st.Attributes)+1)
	}
	keyType := s.st.Key[0].Type
	var rows []Row
	n := 0
	for rs.Next() {
		var wkt string
		vals := make([]any, len(s.st.Attributes))
		dst := make([]any, len(cols))
		dst[0] = &wkt
		for i := range vals {
			dst[i+1] = &vals[i]
		}
		if err := rs.Scan(dst...); err != nil {
			return nil, err
		}
		rings, err := wktRings(wkt)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		keys, err := structure.EncodePolygons(keyType, rings)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		m := make(map[string]any, len(vals))
		for i, a := range s.st.Attributes {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if v != nil {
				m[a.Name] = v
			}
		}
		for _, k := range keys {
			rows = append(rows, Row{Key: k, Values: m})
		}
		n++
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("source_pg_loaded", "table", s.table, "rows", n)
	return rows, nil
}

// wktRings：解析 POLYGON/MULTIPOLYGON 的外环
func wktRings(wkt string) ([][]geo.Point, error) {
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return nil, err
	}
	var polys []geom.Polygon
	switch g.Type() {
	case geom.TypePolygon:
		pg, ok := g.AsPolygon()
		if !ok {
			return nil, fmt.Errorf("geometry %s is not a polygon", g.Type())
		}
		polys = []geom.Polygon{pg}
	case geom.TypeMultiPolygon:
		mp, ok := g.AsMultiPolygon()
		if !ok {
			return nil, fmt.Errorf("geometry %s is not a multipolygon", g.Type())
		}
		for i := 0; i < mp.NumPolygons(); i++ {
			polys = append(polys, mp.PolygonN(i))
		}
	default:
		return nil, fmt.Errorf("unsupported geometry %s", g.Type())
	}
	out := make([][]geo.Point, 0, len(polys))
	for _, p := range polys {
		seq := p.ExteriorRing().Coordinates()
		if seq.Length() == 0 {
			continue
		}
		ring := make([]geo.Point, seq.Length())
		for i := range ring {
			xy := seq.GetXY(i)
			ring[i] = geo.Point{X: xy.X, Y: xy.Y}
		}
		out = append(out, ring)
	}
	return out, nil
}

func (s *postgres) Clone() Source {
	cp := *s
	return &cp
}

func (s *postgres) String() string {
	if s.table != "" {
		return "postgresql: " + s.table
	}
	return "postgresql: query"
}
