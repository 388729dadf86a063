// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"polydict/internal/dictionary"
	"polydict/internal/geo"
	"polydict/internal/loader"
	"polydict/internal/metrics"
	"polydict/internal/polygon"
	"strconv"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/redis/go-redis/v9"
)

// Locator：IP 到经纬度的解析，*geoip2.Reader 满足该接口
type Locator interface {
	City(ip net.IP) (*geoip2.City, error)
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
// 约束：rc 与 loc 均可为 nil；loc 为 nil 时 /find_ip 返回 503。
func BuildRoutes(reg *loader.Registry, rc *redis.Client, loc Locator) *http.ServeMux {
	lk := NewLookup(reg, rc, 0)
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("/dictionaries", instrument("dictionaries", func(w http.ResponseWriter, r *http.Request) {
		out := make([]dictionaryInfo, 0)
		for _, name := range reg.Names() {
			h, _ := reg.Get(name)
			snap := h.Get()
			info := dictionaryInfo{Name: name, Layout: snap.Dict.Layout(), Generation: snap.Generation, LoadedAt: snap.LoadedAt}
			if d, ok := snap.Dict.(polygon.Dictionary); ok {
				s := d.Stats()
				info.Polygons, info.Rows, info.Area = s.Polygons, s.Rows, s.Area
				info.Cells, info.Depth = s.Cells, s.Depth
				info.BuildDurationMs = s.BuildDuration.Milliseconds()
			}
			out = append(out, info)
		}
		writeJSON(w, http.StatusOK, out)
	}))

	apiMux.HandleFunc("/find", instrument("find", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		x, errX := strconv.ParseFloat(q.Get("x"), 64)
		y, errY := strconv.ParseFloat(q.Get("y"), 64)
		if errX != nil || errY != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "x and y must be numbers"})
			return
		}
		res, err := lk.Find(r.Context(), q.Get("dict"), geo.Point{X: x, Y: y})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}))

	apiMux.HandleFunc("/find_ip", instrument("find_ip", func(w http.ResponseWriter, r *http.Request) {
		if loc == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResult{Error: "geoip database is not configured"})
			return
		}
		ipStr := getClientIP(r)
		ip := net.ParseIP(ipStr)
		if ip == nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "invalid ip: " + ipStr})
			return
		}
		city, err := loc.City(ip)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, errorResult{Error: err.Error()})
			return
		}
		// GeoIP 坐标按 x=经度 y=纬度 映射
		res, err := lk.Find(r.Context(), r.URL.Query().Get("dict"), geo.Point{X: city.Location.Longitude, Y: city.Location.Latitude})
		if err != nil {
			writeError(w, err)
			return
		}
		res.IP = ipStr
		writeJSON(w, http.StatusOK, res)
	}))

	apiMux.HandleFunc("/reload", instrument("reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, errorResult{Error: "POST required"})
			return
		}
		gen, err := reg.Reload(r.Context(), r.URL.Query().Get("dict"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dictionary": r.URL.Query().Get("dict"), "generation": gen})
	}))

	return apiMux
}

func instrument(route string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		fn(w, r)
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, dictionary.ErrUnknownElement):
		code = http.StatusNotFound
	case errors.Is(err, errNotPolygon), errors.Is(err, dictionary.ErrBadArguments):
		code = http.StatusBadRequest
	}
	writeJSON(w, code, errorResult{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
