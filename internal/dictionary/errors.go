package dictionary

import (
	"errors"
	"fmt"
)

// 错误类别：通过 errors.Is 判定
var (
	// ErrExcessiveElement：配置子树的子元素个数不符合要求（如 layout 不是恰好一个子元素）
	ErrExcessiveElement = errors.New("excessive element")
	// ErrUnknownElement：引用了未注册的布局名
	ErrUnknownElement = errors.New("unknown element")
	// ErrBadArguments：结构或键类型不被布局接受
	ErrBadArguments = errors.New("bad arguments")
	// ErrLogical：程序错误（重复注册等），只在启动阶段出现
	ErrLogical = errors.New("logical error")
)

// Error：携带类别与诊断信息的具体错误
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Errorf：构造指定类别的错误
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap：保留底层错误链的同时标注类别
func Wrap(kind error, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
