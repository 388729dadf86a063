// 包 config：分层配置树（YAML），以点分路径访问子树，供字典工厂与数据源读取各自前缀下的配置
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config：只读配置树；构造后不再修改，可在多个协程间共享
type Config struct {
	root *yaml.Node
}

// Load：读取 YAML 文件
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(b))
}

// Parse：从 Reader 解析；空文档得到空树
func Parse(r io.Reader) (*Config, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return &Config{root: &yaml.Node{Kind: yaml.MappingNode}}, nil
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return &Config{root: root}, nil
}

func ParseString(s string) (*Config, error) { return Parse(strings.NewReader(s)) }

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// node：按点分路径下钻；映射按键名，序列按十进制下标；路径为空返回根
func (c *Config) node(path string) *yaml.Node {
	n := resolve(c.root)
	path = strings.Trim(path, ".")
	if path == "" {
		return n
	}
	for _, seg := range strings.Split(path, ".") {
		if n == nil {
			return nil
		}
		switch n.Kind {
		case yaml.MappingNode:
			var next *yaml.Node
			for i := 0; i+1 < len(n.Content); i += 2 {
				if n.Content[i].Value == seg {
					next = resolve(n.Content[i+1])
					break
				}
			}
			n = next
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(n.Content) {
				return nil
			}
			n = resolve(n.Content[idx])
		default:
			return nil
		}
	}
	return n
}

// Has：路径存在（值为 null 也算存在）
func (c *Config) Has(path string) bool { return c.node(path) != nil }

// Keys：映射节点的直接子键（按文件顺序）；序列返回下标；标量与缺失返回空
func (c *Config) Keys(path string) []string {
	n := c.node(path)
	if n == nil {
		return nil
	}
	var out []string
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			out = append(out, n.Content[i].Value)
		}
	case yaml.SequenceNode:
		for i := range n.Content {
			out = append(out, strconv.Itoa(i))
		}
	}
	return out
}

// IsSequence：路径指向序列节点
func (c *Config) IsSequence(path string) bool {
	n := c.node(path)
	return n != nil && n.Kind == yaml.SequenceNode
}

// String：必填标量
func (c *Config) String(path string) (string, error) {
	n := c.node(path)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return "", fmt.Errorf("config: %s is not set", path)
	}
	return n.Value, nil
}

// GetString：可选标量，缺失时返回默认值
func (c *Config) GetString(path, def string) string {
	s, err := c.String(path)
	if err != nil {
		return def
	}
	return s
}

// GetInt：可选整数，存在但无法解析时返回错误
func (c *Config) GetInt(path string, def int64) (int64, error) {
	s, err := c.String(path)
	if err != nil {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", path, err)
	}
	return v, nil
}

// GetBool：可选布尔值
func (c *Config) GetBool(path string, def bool) bool {
	s, err := c.String(path)
	if err != nil {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

// Decode：将子树解码到 v（yaml 标签）；路径缺失时不修改 v
func (c *Config) Decode(path string, v any) error {
	n := c.node(path)
	if n == nil {
		return nil
	}
	if err := n.Decode(v); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// Join：拼接点分路径
func Join(prefix string, parts ...string) string {
	out := strings.Trim(prefix, ".")
	for _, p := range parts {
		p = strings.Trim(p, ".")
		if p == "" {
			continue
		}
		if out == "" {
			out = p
		} else {
			out += "." + p
		}
	}
	return out
}
