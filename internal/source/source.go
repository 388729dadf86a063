// 包 source：字典数据源。数据源只负责产出原始行，不理解几何与索引
package source

import (
	"context"
	"errors"
	"fmt"
	"polydict/internal/config"
	"polydict/internal/structure"
	"sort"
	"sync"
)

// Row：一行原始数据；Key 为键列取值，Values 以属性名索引
type Row struct {
	Key    any
	Values map[string]any
}

// 文档注释：数据源契约
// 背景：字典构建与重载时调用 Load 获取完整快照；Clone 得到可独立使用的新实例，供重载路径使用。
// 约束：Load 返回的切片归调用方所有；实现自行处理连接的建立与释放。
type Source interface {
	Load(ctx context.Context) ([]Row, error)
	Clone() Source
	String() string
}

var (
	ErrUnknownSource = errors.New("unknown source type")
	ErrSourceArity   = errors.New("source must have exactly one child element")
)

// Creator：数据源构造函数；prefix 指向 source.<type> 子树
// check 为 true 时在构造阶段校验必填项与外部资源（文件存在等）
type Creator func(ctx context.Context, name string, cfg *config.Config, prefix string, st *structure.Structure, check bool) (Source, error)

// Factory：数据源类型注册表
type Factory struct {
	mu       sync.RWMutex
	creators map[string]Creator
}

func NewFactory() *Factory {
	return &Factory{creators: make(map[string]Creator)}
}

// NewDefaultFactory：注册全部内置数据源
func NewDefaultFactory() *Factory {
	f := NewFactory()
	f.Register("inline", createInline)
	f.Register("file", createFile)
	f.Register("postgresql", createPostgres)
	f.Register("s3", createS3)
	return f
}

// Register：重复注册视为程序错误
func (f *Factory) Register(typ string, c Creator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.creators[typ]; ok {
		panic(fmt.Sprintf("source factory: type %q registered twice", typ))
	}
	f.creators[typ] = c
}

// Types：已注册类型（排序后）
func (f *Factory) Types() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.creators))
	for k := range f.creators {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Create：prefix 指向字典的 source 子树，必须恰有一个子元素
func (f *Factory) Create(ctx context.Context, name string, cfg *config.Config, prefix string, st *structure.Structure, check bool) (Source, error) {
	keys := cfg.Keys(prefix)
	if len(keys) != 1 {
		return nil, fmt.Errorf("%s: %w", name, ErrSourceArity)
	}
	f.mu.RLock()
	c, ok := f.creators[keys[0]]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrUnknownSource, keys[0])
	}
	src, err := c(ctx, name, cfg, config.Join(prefix, keys[0]), st, check)
	if err != nil {
		return nil, fmt.Errorf("%s: source %s: %w", name, keys[0], err)
	}
	return src, nil
}

func keyName(st *structure.Structure) (string, error) {
	if st == nil || len(st.Key) != 1 {
		return "", errors.New("structure must declare exactly one key attribute")
	}
	return st.Key[0].Name, nil
}
