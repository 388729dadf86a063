// 包 structure：字典结构描述（键与属性列）、类型表达式与字面量解码
package structure

import (
	"fmt"
	"strings"
)

// Type：类型表达式的语法树，如 Array(Tuple(Float64, Float64))
// 约束：标量类型 Args 为空；Array 恰有一个参数；Tuple 至少一个参数。
type Type struct {
	Name string
	Args []Type
}

var scalarTypes = map[string]bool{
	"Float32": true, "Float64": true,
	"Int8": true, "Int16": true, "Int32": true, "Int64": true,
	"UInt8": true, "UInt16": true, "UInt32": true, "UInt64": true,
	"String": true,
}

// ParseType：解析类型表达式，空白不敏感
func ParseType(s string) (Type, error) {
	p := &typeParser{src: s}
	t, err := p.parse()
	if err != nil {
		return Type{}, fmt.Errorf("invalid type %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Type{}, fmt.Errorf("invalid type %q: unexpected %q at %d", s, p.src[p.pos:], p.pos)
	}
	return t, nil
}

// MustParseType：常量类型表达式使用
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) parse() (Type, error) {
	name := p.ident()
	if name == "" {
		return Type{}, fmt.Errorf("type name expected at %d", p.pos)
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '(' {
		if !scalarTypes[name] {
			return Type{}, fmt.Errorf("unknown type %s", name)
		}
		return Type{Name: name}, nil
	}
	if name != "Array" && name != "Tuple" {
		return Type{}, fmt.Errorf("type %s takes no arguments", name)
	}
	p.pos++
	var args []Type
	for {
		arg, err := p.parse()
		if err != nil {
			return Type{}, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Type{}, fmt.Errorf("unterminated %s(", name)
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ')' {
			p.pos++
			break
		}
		return Type{}, fmt.Errorf("unexpected %q at %d", p.src[p.pos], p.pos)
	}
	if name == "Array" && len(args) != 1 {
		return Type{}, fmt.Errorf("Array takes exactly one argument, got %d", len(args))
	}
	return Type{Name: name, Args: args}, nil
}

// String：规范形式，参数间以 ", " 分隔
func (t Type) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (t Type) Equal(o Type) bool {
	if t.Name != o.Name || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (t Type) IsArray() bool { return t.Name == "Array" }
func (t Type) IsTuple() bool { return t.Name == "Tuple" }

// Elem：Array 的元素类型
func (t Type) Elem() Type {
	if !t.IsArray() {
		return Type{}
	}
	return t.Args[0]
}

// Zero：类型的零值（规范表示），用于缺失属性的默认值
func (t Type) Zero() any {
	switch t.Name {
	case "Float32", "Float64":
		return float64(0)
	case "Int8", "Int16", "Int32", "Int64":
		return int64(0)
	case "UInt8", "UInt16", "UInt32", "UInt64":
		return uint64(0)
	case "String":
		return ""
	case "Array":
		return []any{}
	case "Tuple":
		out := make(Tuple, len(t.Args))
		for i, a := range t.Args {
			out[i] = a.Zero()
		}
		return out
	}
	return nil
}
