package source

import (
	"context"
	"fmt"
	"polydict/internal/config"
	"polydict/internal/structure"
)

// inline：行直接写在配置里
//
//	source:
//	  inline:
//	    rows:
//	      - { key: [[0, 0], [0, 10], [10, 10], [10, 0]], region_id: 42 }
type inline struct {
	rows []Row
}

func createInline(_ context.Context, _ string, cfg *config.Config, prefix string, st *structure.Structure, check bool) (Source, error) {
	key, err := keyName(st)
	if err != nil {
		return nil, err
	}
	var raw []map[string]any
	if err := cfg.Decode(config.Join(prefix, "rows"), &raw); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(raw))
	for i, m := range raw {
		k, ok := m[key]
		if !ok {
			return nil, fmt.Errorf("row %d has no %q column", i, key)
		}
		vals := make(map[string]any, len(m))
		for name, v := range m {
			if name == key {
				continue
			}
			if check {
				if _, _, known := st.Lookup(name); !known {
					return nil, fmt.Errorf("row %d: unknown attribute %q", i, name)
				}
			}
			vals[name] = v
		}
		rows = append(rows, Row{Key: k, Values: vals})
	}
	return &inline{rows: rows}, nil
}

func (s *inline) Load(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *inline) Clone() Source { return &inline{rows: s.rows} }

func (s *inline) String() string { return fmt.Sprintf("inline: %d rows", len(s.rows)) }
