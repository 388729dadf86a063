package structure

import (
	"fmt"

	"polydict/internal/config"
)

// Attribute：一列声明（名称、类型、缺省值）
type Attribute struct {
	Name      string
	Type      Type
	NullValue any
}

// Structure：字典的键与属性声明
// 约束：RangeMin/RangeMax 仅用于区间类布局，多边形布局遇到即拒绝。
type Structure struct {
	Key        []Attribute
	Attributes []Attribute
	RangeMin   *Attribute
	RangeMax   *Attribute
}

type rawAttribute struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	NullValue any    `yaml:"null_value"`
}

// Parse：读取 prefix 下的 key/attributes/range_min/range_max
func Parse(cfg *config.Config, prefix string) (*Structure, error) {
	if !cfg.Has(prefix) {
		return nil, fmt.Errorf("%s is required", prefix)
	}
	s := &Structure{}
	var err error
	if cfg.Has(config.Join(prefix, "key")) {
		if s.Key, err = parseList(cfg, config.Join(prefix, "key")); err != nil {
			return nil, err
		}
	}
	if s.Attributes, err = parseList(cfg, config.Join(prefix, "attributes")); err != nil {
		return nil, err
	}
	for _, r := range []struct {
		name string
		dst  **Attribute
	}{{"range_min", &s.RangeMin}, {"range_max", &s.RangeMax}} {
		path := config.Join(prefix, r.name)
		if !cfg.Has(path) {
			continue
		}
		var raw rawAttribute
		if err := cfg.Decode(path, &raw); err != nil {
			return nil, err
		}
		a, err := raw.build(path)
		if err != nil {
			return nil, err
		}
		*r.dst = &a
	}
	seen := make(map[string]bool)
	for _, a := range append(append([]Attribute{}, s.Key...), s.Attributes...) {
		if seen[a.Name] {
			return nil, fmt.Errorf("%s: duplicate attribute %q", prefix, a.Name)
		}
		seen[a.Name] = true
	}
	return s, nil
}

func parseList(cfg *config.Config, path string) ([]Attribute, error) {
	if !cfg.Has(path) {
		return nil, nil
	}
	var raws []rawAttribute
	if !cfg.IsSequence(path) {
		// key: {name: ..., type: ...} 单列简写
		var one rawAttribute
		if err := cfg.Decode(path, &one); err != nil {
			return nil, err
		}
		raws = []rawAttribute{one}
	} else if err := cfg.Decode(path, &raws); err != nil {
		return nil, err
	}
	out := make([]Attribute, 0, len(raws))
	for i, r := range raws {
		a, err := r.build(fmt.Sprintf("%s.%d", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r rawAttribute) build(path string) (Attribute, error) {
	if r.Name == "" {
		return Attribute{}, fmt.Errorf("%s: attribute name is required", path)
	}
	if r.Type == "" {
		return Attribute{}, fmt.Errorf("%s: attribute type is required", path)
	}
	t, err := ParseType(r.Type)
	if err != nil {
		return Attribute{}, fmt.Errorf("%s: %w", path, err)
	}
	a := Attribute{Name: r.Name, Type: t, NullValue: t.Zero()}
	if r.NullValue != nil {
		if a.NullValue, err = DecodeLiteral(t, r.NullValue); err != nil {
			return Attribute{}, fmt.Errorf("%s: null_value: %w", path, err)
		}
	}
	return a, nil
}

// Lookup：按名称查找属性列，返回下标
func (s *Structure) Lookup(name string) (Attribute, int, bool) {
	for i, a := range s.Attributes {
		if a.Name == name {
			return a, i, true
		}
	}
	return Attribute{}, -1, false
}

// AttributeNames：属性列名（声明顺序）
func (s *Structure) AttributeNames() []string {
	out := make([]string, len(s.Attributes))
	for i, a := range s.Attributes {
		out[i] = a.Name
	}
	return out
}
