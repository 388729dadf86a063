package api

import "time"

// 文档注释：点定位返回结构（对外）
// 约束：Found=false 时 Row/Attributes 省略；Generation 标识命中所依据的字典代数，用于缓存键。
type findResult struct {
	Dictionary string         `json:"dictionary"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	IP         string         `json:"ip,omitempty"`
	Found      bool           `json:"found"`
	Row        *uint64        `json:"row,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Generation uint64         `json:"generation"`
}

// dictionaryInfo：/dictionaries 列表项
type dictionaryInfo struct {
	Name            string    `json:"name"`
	Layout          string    `json:"layout"`
	Generation      uint64    `json:"generation"`
	LoadedAt        time.Time `json:"loaded_at"`
	Polygons        int       `json:"polygons,omitempty"`
	Rows            int       `json:"rows,omitempty"`
	Area            float64   `json:"area,omitempty"`
	Cells           int       `json:"cells,omitempty"`
	Depth           int       `json:"depth,omitempty"`
	BuildDurationMs int64     `json:"build_duration_ms,omitempty"`
}

type errorResult struct {
	Error string `json:"error"`
}
