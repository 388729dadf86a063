package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polydict/internal/config"
	"polydict/internal/structure"
)

const sample = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":7,"geometry":{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]},
  "properties":{"name":"west"}},
 {"type":"Feature","geometry":{"type":"MultiPolygon","coordinates":[[[[20,0],[30,0],[30,10],[20,0]]]]},
  "properties":{"id":42,"name":"east"}}
]}`

func target() Target {
	return Target{
		Table:     "regions",
		KeyColumn: "key",
		Structure: &structure.Structure{
			Key: []structure.Attribute{{Name: "key", Type: structure.MustParseType("Array(Array(Float64))")}},
			Attributes: []structure.Attribute{
				{Name: "id", Type: structure.MustParseType("UInt64")},
				{Name: "name", Type: structure.MustParseType("String")},
				{Name: "population", Type: structure.MustParseType("Int64")},
			},
		},
	}
}

func TestRecords(t *testing.T) {
	fc, err := geojson.UnmarshalFeatureCollection([]byte(sample))
	require.NoError(t, err)
	recs, err := records(fc, target().Structure)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "POLYGON((0 0,10 0,10 10,0 10,0 0))", recs[0].WKT)
	assert.Equal(t, []any{"7", "west", nil}, recs[0].Values)
	assert.Contains(t, recs[1].WKT, "MULTIPOLYGON")
	assert.Equal(t, []any{"42", "east", nil}, recs[1].Values)
}

func TestRecordsRejectsBadInput(t *testing.T) {
	fc, err := geojson.UnmarshalFeatureCollection([]byte(`{"type":"FeatureCollection","features":[
	 {"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}]}`))
	require.NoError(t, err)
	_, err = records(fc, target().Structure)
	assert.ErrorContains(t, err, "unsupported geometry")

	fc, err = geojson.UnmarshalFeatureCollection([]byte(`{"type":"FeatureCollection","features":[
	 {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{"population":"many"}}]}`))
	require.NoError(t, err)
	_, err = records(fc, target().Structure)
	assert.ErrorContains(t, err, "attribute population")
}

func TestInsertSQL(t *testing.T) {
	tg := target()
	tg.Table = "geo.regions"
	assert.Equal(t, `INSERT INTO "geo"."regions"("key","id","name","population") VALUES($1,$2,$3,$4)`, tg.insertSQL())
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/regions.geojson" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.URL+"/regions.geojson")
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))

	_, err = Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "bad status 404")

	path := filepath.Join(t.TempDir(), "regions.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	data, err = Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
}

func TestNextWeekdayAt(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	// 2026-10-14 是周三
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 19, 3, 0, 0, 0, loc), nextWeekdayAt(now, time.Monday, 3))

	monday := time.Date(2026, 10, 19, 2, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 19, 3, 0, 0, 0, loc), nextWeekdayAt(monday, time.Monday, 3))

	late := time.Date(2026, 10, 19, 4, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 26, 3, 0, 0, 0, loc), nextWeekdayAt(late, time.Monday, 3))
}

func TestTargetFromConfig(t *testing.T) {
	cfg, err := config.ParseString(`
dictionaries:
  regions:
    layout: {bucket_polygon: {}}
    structure:
      key: [{name: key, type: "Array(Array(Float64))"}]
      attributes:
        - {name: name, type: String}
    source:
      postgresql:
        dsn: "postgres://u:p@db:5432/geo?sslmode=disable"
        table: public.regions
        key_column: boundary
  inline_only:
    layout: {polygon: {}}
    structure:
      key: [{name: key, type: "Array(Array(Float64))"}]
    source: {inline: {rows: []}}
`)
	require.NoError(t, err)
	tg, dsn, err := TargetFromConfig(cfg, "regions")
	require.NoError(t, err)
	assert.Equal(t, "public.regions", tg.Table)
	assert.Equal(t, "boundary", tg.KeyColumn)
	assert.Equal(t, []string{"name"}, tg.Structure.AttributeNames())
	assert.Equal(t, "postgres://u:p@db:5432/geo?sslmode=disable", dsn)

	_, _, err = TargetFromConfig(cfg, "inline_only")
	assert.ErrorContains(t, err, "not postgresql")
	_, _, err = TargetFromConfig(cfg, "missing")
	assert.ErrorContains(t, err, "not configured")
}
