package loader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polydict/internal/config"
	"polydict/internal/dictionary"
	"polydict/internal/polygon"
	"polydict/internal/source"
	"polydict/internal/structure"
)

type fakeDictionary struct {
	lifetime dictionary.Lifetime
	clones   *atomic.Int64
	fail     bool
}

func (d *fakeDictionary) Name() string                    { return "fake" }
func (d *fakeDictionary) Layout() string                  { return "fake" }
func (d *fakeDictionary) Structure() *structure.Structure { return nil }
func (d *fakeDictionary) Lifetime() dictionary.Lifetime   { return d.lifetime }
func (d *fakeDictionary) Source() source.Source           { return nil }

func (d *fakeDictionary) Clone(context.Context) (dictionary.Dictionary, error) {
	d.clones.Add(1)
	if d.fail {
		return nil, errors.New("source unavailable")
	}
	return &fakeDictionary{lifetime: d.lifetime, clones: d.clones}, nil
}

func TestHolderPublish(t *testing.T) {
	first := &fakeDictionary{clones: new(atomic.Int64)}
	h := NewHolder("regions", first)
	snap := h.Get()
	assert.EqualValues(t, 1, snap.Generation)
	assert.Same(t, first, snap.Dict)

	gen, err := h.Reload(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, gen)
	assert.NotSame(t, first, h.Get().Dict)
	// 旧快照不受影响
	assert.Same(t, first, snap.Dict)
}

func TestHolderReloadFailureKeepsInstance(t *testing.T) {
	d := &fakeDictionary{clones: new(atomic.Int64), fail: true}
	h := NewHolder("regions", d)
	gen, err := h.Reload(context.Background())
	assert.Error(t, err)
	assert.EqualValues(t, 1, gen)
	assert.Same(t, d, h.Get().Dict)
}

func TestStartReloadsOnLifetime(t *testing.T) {
	clones := new(atomic.Int64)
	r := NewRegistry(map[string]dictionary.Dictionary{
		"fast":   &fakeDictionary{lifetime: dictionary.Lifetime{Min: 5 * time.Millisecond, Max: 10 * time.Millisecond}, clones: clones},
		"static": &fakeDictionary{clones: new(atomic.Int64)},
	})
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	h, ok := r.Get("fast")
	require.True(t, ok)
	require.Eventually(t, func() bool { return h.Get().Generation >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	r.Wait()

	s, _ := r.Get("static")
	assert.EqualValues(t, 1, s.Get().Generation)
	assert.Equal(t, []string{"fast", "static"}, r.Names())
}

const dictionaries = `
dictionaries:
  squares:
    layout: {polygon: {}}
    structure:
      key: [{name: key, type: "Array(Array(Float64))"}]
      attributes: [{name: id, type: UInt64}]
    source:
      inline:
        rows:
          - {key: [[0, 0], [0, 10], [10, 10], [10, 0]], id: 42}
  strips:
    layout: {one_bucket_polygon: {}}
    lifetime: 300
    structure:
      key: [{name: key, type: "Array(Array(Float64))"}]
      attributes: [{name: id, type: UInt64}]
    source:
      inline:
        rows:
          - {key: [[20, 0], [20, 5], [25, 5], [25, 0]], id: 7}
`

func TestLoadAll(t *testing.T) {
	f := dictionary.NewFactory()
	polygon.Register(f)
	cfg, err := config.ParseString(dictionaries)
	require.NoError(t, err)
	dctx := &dictionary.Context{Sources: source.NewDefaultFactory()}

	r, err := LoadAll(context.Background(), f, cfg, dctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"squares", "strips"}, r.Names())

	h, ok := r.Get("strips")
	require.True(t, ok)
	assert.Equal(t, "one_bucket_polygon", h.Get().Dict.Layout())
	assert.True(t, h.Get().Dict.Lifetime().Enabled())

	gen, err := r.Reload(context.Background(), "squares")
	require.NoError(t, err)
	assert.EqualValues(t, 2, gen)
	_, err = r.Reload(context.Background(), "missing")
	assert.Error(t, err)
}

func TestLoadAllFailsOnAnyError(t *testing.T) {
	f := dictionary.NewFactory()
	polygon.Register(f)
	cfg, err := config.ParseString(dictionaries + `
  broken:
    layout: {flat: {}}
    structure:
      key: [{name: key, type: "Array(Array(Float64))"}]
    source: {inline: {rows: []}}
`)
	require.NoError(t, err)
	_, err = LoadAll(context.Background(), f, cfg, &dictionary.Context{Sources: source.NewDefaultFactory()})
	assert.ErrorIs(t, err, dictionary.ErrUnknownElement)
}
