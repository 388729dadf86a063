// 包 dictionary：外部字典的布局注册表与公共契约
package dictionary

import (
	"context"
	"polydict/internal/config"
	"polydict/internal/source"
	"polydict/internal/structure"
)

// Dictionary：构建完成的字典实例（只读）
// 约束：实例构建后不可变；Clone 重新获取数据源快照并完整重建，不与原实例共享索引状态。
type Dictionary interface {
	Name() string
	Layout() string
	Structure() *structure.Structure
	Lifetime() Lifetime
	Source() source.Source
	Clone(ctx context.Context) (Dictionary, error)
}

// Context：创建字典时的环境依赖
// 背景：数据源注册表由调用方注入，测试可替换为私有实例。
type Context struct {
	Sources *source.Factory
}

// Creator：布局构造函数
type Creator func(ctx context.Context, name string, st *structure.Structure, cfg *config.Config, prefix string, dctx *Context, src source.Source) (Dictionary, error)

// CreatorWithoutContext：不需要 Context 的布局构造函数
type CreatorWithoutContext func(ctx context.Context, name string, st *structure.Structure, cfg *config.Config, prefix string, src source.Source) (Dictionary, error)

// FullName：database.name 形式的诊断名；未配置 .name 时使用定义名
func FullName(name string, cfg *config.Config, prefix string) string {
	n := cfg.GetString(config.Join(prefix, "name"), name)
	if db := cfg.GetString(config.Join(prefix, "database"), ""); db != "" {
		return db + "." + n
	}
	return n
}
