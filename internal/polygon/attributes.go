package polygon

import (
	"polydict/internal/dictionary"
	"polydict/internal/structure"
)

// Attributes：按列存放的属性值，行号即键所在的源数据行
type Attributes struct {
	st   *structure.Structure
	cols [][]any
	rows int
}

func newAttributes(st *structure.Structure, rows int) *Attributes {
	a := &Attributes{st: st, cols: make([][]any, len(st.Attributes)), rows: rows}
	for i := range a.cols {
		a.cols[i] = make([]any, 0, rows)
	}
	return a
}

// Get：属性 name 在第 row 行的值
func (a *Attributes) Get(name string, row uint64) (any, error) {
	_, idx, ok := a.st.Lookup(name)
	if !ok {
		return nil, dictionary.Errorf(dictionary.ErrBadArguments, "no such attribute %q", name)
	}
	if row >= uint64(a.rows) {
		return nil, dictionary.Errorf(dictionary.ErrBadArguments, "row %d out of range [0, %d)", row, a.rows)
	}
	return a.cols[idx][row], nil
}

// Row：整行属性
func (a *Attributes) Row(row uint64) (map[string]any, error) {
	if row >= uint64(a.rows) {
		return nil, dictionary.Errorf(dictionary.ErrBadArguments, "row %d out of range [0, %d)", row, a.rows)
	}
	out := make(map[string]any, len(a.cols))
	for i, attr := range a.st.Attributes {
		out[attr.Name] = a.cols[i][row]
	}
	return out, nil
}

func (a *Attributes) Names() []string { return a.st.AttributeNames() }

func (a *Attributes) Len() int { return a.rows }
