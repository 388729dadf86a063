package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"polydict/internal/dictionary"
	"polydict/internal/geo"
	"polydict/internal/loader"
	"polydict/internal/logger"
	"polydict/internal/metrics"
	"polydict/internal/polygon"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var errNotPolygon = errors.New("dictionary does not support point lookup")

// Lookup：带结果缓存的点定位服务
// 背景：热点坐标（如城市中心、GeoIP 回落坐标）重复度高，结果按字典代数缓存到 Redis；
// 字典重载后代数变化，旧键自然失效，无需主动清理。
type Lookup struct {
	reg *loader.Registry
	rc  *redis.Client
	ttl time.Duration
}

// NewLookup：rc 可为 nil（不缓存）；ttl<=0 时取 FIND_CACHE_TTL_S，默认 3600 秒
func NewLookup(reg *loader.Registry, rc *redis.Client, ttl time.Duration) *Lookup {
	if ttl <= 0 {
		ttl = time.Hour
		if n, err := strconv.Atoi(os.Getenv("FIND_CACHE_TTL_S")); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}
	return &Lookup{reg: reg, rc: rc, ttl: ttl}
}

func cacheKey(dict string, gen uint64, p geo.Point) string {
	return "find:" + dict + ":" + strconv.FormatUint(gen, 10) + ":" +
		strconv.FormatFloat(p.X, 'g', -1, 64) + ":" + strconv.FormatFloat(p.Y, 'g', -1, 64)
}

// Find：定位点所在行并返回全部属性
// 约束：未知字典返回 ErrUnknownElement 类错误；非法坐标按未命中处理。
func (l *Lookup) Find(ctx context.Context, dict string, p geo.Point) (*findResult, error) {
	h, ok := l.reg.Get(dict)
	if !ok {
		return nil, dictionary.Errorf(dictionary.ErrUnknownElement, "unknown dictionary: %s", dict)
	}
	snap := h.Get()
	d, ok := snap.Dict.(polygon.Dictionary)
	if !ok {
		return nil, fmt.Errorf("%s: %w", dict, errNotPolygon)
	}
	key := cacheKey(dict, snap.Generation, p)
	if l.rc != nil {
		if s, _ := l.rc.Get(ctx, key).Result(); s != "" {
			var res findResult
			dec := json.NewDecoder(bytes.NewReader([]byte(s)))
			dec.UseNumber()
			if err := dec.Decode(&res); err == nil {
				metrics.CacheHitsTotal.Inc()
				metrics.LookupsTotal.WithLabelValues(dict, outcome(res.Found)).Inc()
				return &res, nil
			}
		}
		metrics.CacheMissesTotal.Inc()
	}

	res := &findResult{Dictionary: dict, X: p.X, Y: p.Y, Generation: snap.Generation}
	if row, found := d.Find(p); found {
		attrs, err := d.Row(row)
		if err != nil {
			return nil, err
		}
		res.Found = true
		res.Row = &row
		res.Attributes = attrs
	}
	metrics.LookupsTotal.WithLabelValues(dict, outcome(res.Found)).Inc()
	if l.rc != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := l.rc.Set(ctx, key, b, l.ttl).Err(); err != nil {
				logger.L().Debug("find_cache_set_error", "dictionary", dict, "err", err)
			}
		}
	}
	return res, nil
}

func outcome(found bool) string {
	if found {
		return "hit"
	}
	return "miss"
}
