package api

import (
	"net"
	"net/http"
	"strings"
)

// 文档注释：获取待定位的客户端 IP
// 背景：多层代理环境下，优先显式 ip 参数，其次常见反向代理头，最后回退远端地址。
// 约束：头部可被伪造，仅用于定位查询，不用于鉴权；结果去掉端口与方括号。
func getClientIP(r *http.Request) string {
	if q := r.URL.Query().Get("ip"); q != "" {
		return q
	}
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	for _, k := range []string{"cf-connecting-ip", "x-real-ip", "x-client-ip"} {
		if x := h.Get(k); x != "" {
			return strings.TrimSpace(x)
		}
	}
	if x := h.Get("forwarded"); x != "" {
		if i := strings.Index(strings.ToLower(x), "for="); i >= 0 {
			y := x[i+4:]
			if p := strings.IndexAny(y, ";,"); p >= 0 {
				y = y[:p]
			}
			return stripPort(strings.Trim(y, "\" "))
		}
	}
	return stripPort(r.RemoteAddr)
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}
