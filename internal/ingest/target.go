package ingest

import (
	"fmt"
	"polydict/internal/config"
	"polydict/internal/loader"
	"polydict/internal/source"
	"polydict/internal/structure"
)

// TargetFromConfig：由字典配置推导导入目标
// 背景：导入表即字典 postgresql 数据源读取的表，结构与键列名沿用字典声明，避免两处配置漂移。
// 返回：目标与连接串；字典不存在、未使用 postgresql 数据源或只配置了 query 时报错
func TargetFromConfig(cfg *config.Config, name string) (Target, string, error) {
	prefix := config.Join(loader.DictionariesPrefix, name)
	if !cfg.Has(prefix) {
		return Target{}, "", fmt.Errorf("dictionary %s is not configured", name)
	}
	st, err := structure.Parse(cfg, config.Join(prefix, "structure"))
	if err != nil {
		return Target{}, "", err
	}
	if len(st.Key) != 1 {
		return Target{}, "", fmt.Errorf("%s: the key should consist of a single attribute", name)
	}
	sp := config.Join(prefix, "source", "postgresql")
	if !cfg.Has(sp) {
		return Target{}, "", fmt.Errorf("%s: source is not postgresql", name)
	}
	t := Target{
		Table:     cfg.GetString(config.Join(sp, "table"), ""),
		KeyColumn: cfg.GetString(config.Join(sp, "key_column"), st.Key[0].Name),
		Structure: st,
	}
	if t.Table == "" {
		return Target{}, "", fmt.Errorf("%s: source.postgresql.table is required for ingest", name)
	}
	return t, source.PostgresDSN(cfg, sp), nil
}
