package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polydict/internal/dictionary"
	"polydict/internal/geo"
	"polydict/internal/loader"
	"polydict/internal/polygon"
	"polydict/internal/source"
	"polydict/internal/structure"
)

func regionsStructure() *structure.Structure {
	return &structure.Structure{
		Key: []structure.Attribute{{Name: "key", Type: structure.MustParseType("Array(Array(Float64))")}},
		Attributes: []structure.Attribute{
			{Name: "name", Type: structure.MustParseType("String"), NullValue: ""},
		},
	}
}

func square(x0, y0, x1, y1 float64) []any {
	return []any{[]any{x0, y0}, []any{x0, y1}, []any{x1, y1}, []any{x1, y0}}
}

func newRegistry(t *testing.T) *loader.Registry {
	t.Helper()
	rows := []source.Row{
		{Key: square(0, 0, 10, 10), Values: map[string]any{"name": "west"}},
		{Key: square(10, 0, 20, 10), Values: map[string]any{"name": "east"}},
	}
	d, err := polygon.Build(context.Background(), polygon.LayoutSmart, "regions", regionsStructure(), source.NewStatic(rows), polygon.Options{})
	require.NoError(t, err)
	return loader.NewRegistry(map[string]dictionary.Dictionary{"regions": d})
}

type fakeLocator struct {
	lon, lat float64
	err      error
}

func (f fakeLocator) City(net.IP) (*geoip2.City, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := &geoip2.City{}
	c.Location.Longitude = f.lon
	c.Location.Latitude = f.lat
	return c, nil
}

func pointXY(x, y float64) geo.Point { return geo.Point{X: x, Y: y} }

func get(t *testing.T, h http.Handler, url string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	var body map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestFind(t *testing.T) {
	mux := BuildRoutes(newRegistry(t), nil, nil)

	rec, body := get(t, mux, "/find?dict=regions&x=15&y=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["found"])
	assert.EqualValues(t, 1, body["row"])
	assert.Equal(t, map[string]any{"name": "east"}, body["attributes"])
	assert.EqualValues(t, 1, body["generation"])

	// 共享边上取编号较小者
	_, body = get(t, mux, "/find?dict=regions&x=10&y=5")
	assert.EqualValues(t, 0, body["row"])

	_, body = get(t, mux, "/find?dict=regions&x=25&y=5")
	assert.Equal(t, false, body["found"])
	assert.NotContains(t, body, "row")
}

func TestFindErrors(t *testing.T) {
	mux := BuildRoutes(newRegistry(t), nil, nil)
	rec, _ := get(t, mux, "/find?dict=regions&x=a&y=5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, body := get(t, mux, "/find?dict=nope&x=1&y=1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body["error"], "unknown dictionary")
}

func TestFindIP(t *testing.T) {
	mux := BuildRoutes(newRegistry(t), nil, fakeLocator{lon: 3, lat: 4})
	rec, body := get(t, mux, "/find_ip?dict=regions&ip=203.0.113.7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "203.0.113.7", body["ip"])
	assert.Equal(t, map[string]any{"name": "west"}, body["attributes"])

	rec, _ = get(t, mux, "/find_ip?dict=regions&ip=not-an-ip")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mux = BuildRoutes(newRegistry(t), nil, fakeLocator{err: errors.New("address not found")})
	rec, _ = get(t, mux, "/find_ip?dict=regions&ip=203.0.113.7")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	mux = BuildRoutes(newRegistry(t), nil, nil)
	rec, _ = get(t, mux, "/find_ip?dict=regions&ip=203.0.113.7")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDictionariesAndReload(t *testing.T) {
	mux := BuildRoutes(newRegistry(t), nil, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dictionaries", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []dictionaryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "regions", list[0].Name)
	assert.Equal(t, polygon.LayoutSmart, list[0].Layout)
	assert.Equal(t, 2, list[0].Polygons)
	assert.InDelta(t, 200, list[0].Area, 1e-9)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reload?dict=regions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload?dict=regions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	_, body := get(t, mux, "/find?dict=regions&x=1&y=1")
	assert.EqualValues(t, 2, body["generation"])

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload?dict=nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/find_ip", nil)
	r.RemoteAddr = "[2001:db8::1]:5555"
	assert.Equal(t, "2001:db8::1", getClientIP(r))

	r.Header.Set("forwarded", `for="198.51.100.2:80";proto=https`)
	assert.Equal(t, "198.51.100.2", getClientIP(r))

	r.Header.Set("x-forwarded-for", "192.0.2.1, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", getClientIP(r))
}

func TestCacheKeyPrecision(t *testing.T) {
	x, y := 0.1, 0.2
	a := cacheKey("regions", 1, pointXY(x+y, 1))
	b := cacheKey("regions", 1, pointXY(0.3, 1))
	assert.NotEqual(t, a, b)
	assert.Equal(t, "find:regions:1:0.30000000000000004:1", a)
	assert.NotEqual(t, cacheKey("regions", 1, pointXY(1, 1)), cacheKey("regions", 2, pointXY(1, 1)))
}
