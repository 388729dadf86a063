package structure

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Tuple：Tuple 类型值的规范表示，与 Array 的 []any 区分
type Tuple []any

// DecodeLiteral：把数据源给出的原始值解码为类型 t 的规范表示
// 背景：YAML/JSON/数据库驱动给出的数值类型各不相同（int、float64、json.Number、字符串）。
// 约束：Float→float64，Int→int64，UInt→uint64，String→string，Array→[]any，Tuple→Tuple；
// Tuple 也接受长度一致的切片。
func DecodeLiteral(t Type, v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("null is not a valid %s", t)
	}
	switch t.Name {
	case "Float32", "Float64":
		return toFloat(v)
	case "Int8", "Int16", "Int32", "Int64":
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		if bits := intBits(t.Name); bits < 64 {
			lim := int64(1) << (bits - 1)
			if n < -lim || n >= lim {
				return nil, fmt.Errorf("%d overflows %s", n, t)
			}
		}
		return n, nil
	case "UInt8", "UInt16", "UInt32", "UInt64":
		n, err := toUint(v)
		if err != nil {
			return nil, err
		}
		if bits := intBits(t.Name); bits < 64 && n >= uint64(1)<<bits {
			return nil, fmt.Errorf("%d overflows %s", n, t)
		}
		return n, nil
	case "String":
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
		return fmt.Sprint(v), nil
	case "Array":
		items, err := elements(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		out := make([]any, len(items))
		for i, it := range items {
			d, err := DecodeLiteral(t.Args[0], it)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", t, i, err)
			}
			out[i] = d
		}
		return out, nil
	case "Tuple":
		items, err := elements(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		if len(items) != len(t.Args) {
			return nil, fmt.Errorf("%s: expected %d elements, got %d", t, len(t.Args), len(items))
		}
		out := make(Tuple, len(items))
		for i, it := range items {
			d, err := DecodeLiteral(t.Args[i], it)
			if err != nil {
				return nil, fmt.Errorf("%s.%d: %w", t, i+1, err)
			}
			out[i] = d
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}

func intBits(name string) uint {
	switch name {
	case "Int8", "UInt8":
		return 8
	case "Int16", "UInt16":
		return 16
	case "Int32", "UInt32":
		return 32
	}
	return 64
}

func elements(v any) ([]any, error) {
	switch s := v.(type) {
	case []any:
		return s, nil
	case Tuple:
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows Int64", n)
		}
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func toUint(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case string:
		return strconv.ParseUint(n, 10, 64)
	case json.Number:
		return strconv.ParseUint(n.String(), 10, 64)
	}
	i, err := toInt(v)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("%d is negative", i)
	}
	return uint64(i), nil
}
