package dictionary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polydict/internal/config"
	"polydict/internal/source"
	"polydict/internal/structure"
)

type stubDictionary struct {
	name   string
	layout string
	st     *structure.Structure
	src    source.Source
}

func (d *stubDictionary) Name() string                              { return d.name }
func (d *stubDictionary) Layout() string                            { return d.layout }
func (d *stubDictionary) Structure() *structure.Structure           { return d.st }
func (d *stubDictionary) Lifetime() Lifetime                        { return Lifetime{} }
func (d *stubDictionary) Source() source.Source                     { return d.src }
func (d *stubDictionary) Clone(context.Context) (Dictionary, error) { return d, nil }

func stubCreator(layout string) CreatorWithoutContext {
	return func(_ context.Context, name string, st *structure.Structure, _ *config.Config, _ string, src source.Source) (Dictionary, error) {
		return &stubDictionary{name: name, layout: layout, st: st, src: src}, nil
	}
}

const definition = `
regions:
  layout:
    LAYOUT
  structure:
    key:
      - name: key
        type: Array(Array(Float64))
    attributes:
      - name: id
        type: UInt64
  source:
    inline:
      rows: []
`

func create(t *testing.T, f *Factory, layout string) (Dictionary, error) {
	t.Helper()
	cfg, err := config.ParseString(replaceLayout(layout))
	require.NoError(t, err)
	return f.Create(context.Background(), "regions", cfg, "regions", &Context{Sources: source.NewDefaultFactory()}, false)
}

func replaceLayout(layout string) string {
	return strings.Replace(definition, "LAYOUT", layout, 1)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	f := NewFactory()
	f.RegisterLayoutWithoutContext("polygon", stubCreator("polygon"), true)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrLogical)
		assert.Contains(t, err.Error(), "'polygon' is not unique")
	}()
	f.RegisterLayoutWithoutContext("polygon", stubCreator("polygon"), true)
}

func TestCreate(t *testing.T) {
	f := NewFactory()
	f.RegisterLayoutWithoutContext("polygon", stubCreator("polygon"), true)
	var seen *Context
	f.RegisterLayout("hashed", func(_ context.Context, name string, st *structure.Structure, _ *config.Config, _ string, dctx *Context, src source.Source) (Dictionary, error) {
		seen = dctx
		return &stubDictionary{name: name, layout: "hashed", st: st, src: src}, nil
	}, false)

	d, err := create(t, f, "polygon: {}")
	require.NoError(t, err)
	assert.Equal(t, "polygon", d.Layout())
	assert.Equal(t, "regions", d.Name())
	assert.Equal(t, "inline: 0 rows", d.Source().String())
	require.Len(t, d.Structure().Key, 1)

	_, err = create(t, f, "hashed: {}")
	require.NoError(t, err)
	assert.NotNil(t, seen)
	assert.Equal(t, []string{"hashed", "polygon"}, f.Layouts())
}

func TestCreateErrors(t *testing.T) {
	f := NewFactory()
	f.RegisterLayoutWithoutContext("polygon", stubCreator("polygon"), true)

	_, err := create(t, f, "{}")
	assert.ErrorIs(t, err, ErrExcessiveElement)
	assert.EqualError(t, err, "regions: element dictionary.layout should have exactly one child element")

	_, err = create(t, f, "{polygon: {}, grid_polygon: {}}")
	assert.ErrorIs(t, err, ErrExcessiveElement)

	_, err = create(t, f, "{flat: {}}")
	assert.ErrorIs(t, err, ErrUnknownElement)
	assert.EqualError(t, err, "regions: unknown dictionary layout type: flat")

	cfg, err := config.ParseString("regions:\n  layout: {polygon: {}}\n  structure:\n    key: [{name: key, type: Blob}]\n")
	require.NoError(t, err)
	_, err = f.Create(context.Background(), "regions", cfg, "regions", &Context{Sources: source.NewDefaultFactory()}, false)
	assert.ErrorIs(t, err, ErrBadArguments)

	cfg, err = config.ParseString(replaceLayout("polygon: {}"))
	require.NoError(t, err)
	_, err = f.Create(context.Background(), "regions", cfg, "regions", nil, false)
	assert.ErrorIs(t, err, ErrLogical)
}

func TestIsComplex(t *testing.T) {
	f := NewFactory()
	f.RegisterLayoutWithoutContext("polygon", stubCreator("polygon"), true)
	f.RegisterLayoutWithoutContext("flat", stubCreator("flat"), false)

	c, err := f.IsComplex("polygon")
	require.NoError(t, err)
	assert.True(t, c)
	c, err = f.IsComplex("flat")
	require.NoError(t, err)
	assert.False(t, c)
	_, err = f.IsComplex("cache")
	assert.ErrorIs(t, err, ErrUnknownElement)
}

func TestErrorWrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrBadArguments, cause, "%s: row %d", "regions", 3)
	assert.ErrorIs(t, err, ErrBadArguments)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "regions: row 3: boom")
	assert.NotErrorIs(t, err, ErrLogical)
}

func TestFullName(t *testing.T) {
	cfg, err := config.ParseString("d:\n  name: regions\n  database: geo\ne: {}\n")
	require.NoError(t, err)
	assert.Equal(t, "geo.regions", FullName("d", cfg, "d"))
	assert.Equal(t, "e", FullName("e", cfg, "e"))
}

func TestLifetime(t *testing.T) {
	cases := []struct {
		src      string
		min, max time.Duration
		ok       bool
	}{
		{"d: {}", 0, 0, true},
		{"d: {lifetime: 300}", 300 * time.Second, 300 * time.Second, true},
		{"d: {lifetime: 0}", 0, 0, true},
		{"d: {lifetime: {min: 10, max: 20}}", 10 * time.Second, 20 * time.Second, true},
		{"d: {lifetime: {min: 30, max: 20}}", 0, 0, false},
		{"d: {lifetime: -1}", 0, 0, false},
		{"d: {lifetime: soon}", 0, 0, false},
	}
	for _, c := range cases {
		cfg, err := config.ParseString(c.src)
		require.NoError(t, err)
		l, err := ParseLifetime(cfg, "d")
		if !c.ok {
			assert.ErrorIs(t, err, ErrBadArguments, c.src)
			continue
		}
		require.NoError(t, err, c.src)
		assert.Equal(t, c.min, l.Min, c.src)
		assert.Equal(t, c.max, l.Max, c.src)
	}

	l := Lifetime{Min: 10 * time.Second, Max: 20 * time.Second}
	for i := 0; i < 100; i++ {
		n := l.Next()
		assert.GreaterOrEqual(t, n, l.Min)
		assert.LessOrEqual(t, n, l.Max)
	}
	assert.False(t, Lifetime{}.Enabled())
	assert.True(t, l.Enabled())
}
