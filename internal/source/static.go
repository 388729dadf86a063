package source

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Static：进程内固定行集合，用于嵌入式场景与测试
type Static struct {
	rows  []Row
	loads *atomic.Int64
}

func NewStatic(rows []Row) *Static {
	return &Static{rows: rows, loads: new(atomic.Int64)}
}

func (s *Static) Load(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.loads.Add(1)
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

// Clone：共享只读行与加载计数
func (s *Static) Clone() Source { return &Static{rows: s.rows, loads: s.loads} }

// Loads：累计 Load 次数（含克隆实例）
func (s *Static) Loads() int64 { return s.loads.Load() }

func (s *Static) String() string { return fmt.Sprintf("static: %d rows", len(s.rows)) }
