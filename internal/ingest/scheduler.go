// 包 ingest：调度每周的离线数据刷新任务，运行在服务进程内的后台协程
package ingest

import (
	"context"
	"database/sql"
	"os"
	"polydict/internal/logger"
	"strconv"
	"time"
)

// nextWeekdayAt：计算下一次指定星期、整点的时间点（严格晚于 now）
func nextWeekdayAt(now time.Time, day time.Weekday, hour int) time.Time {
	for i := 0; i <= 7; i++ {
		d := now.AddDate(0, 0, i)
		if d.Weekday() != day {
			continue
		}
		t := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, now.Location())
		if t.After(now) {
			return t
		}
	}
	d := now.AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, now.Location())
}

// StartWeekly：每周一按 INGEST_TZ（默认 Asia/Shanghai）的 INGEST_HOUR 点（默认 3）刷新目标表
// 背景：遵循上游更新节奏定期刷新；成功后回调 onDone（通常触发相关字典重载），错误由日志记录，任务继续调度
// 约束：ctx 取消后退出；运行于后台协程
func StartWeekly(ctx context.Context, db *sql.DB, t Target, src string, onDone func(context.Context)) {
	l := logger.L()
	loc, err := time.LoadLocation(envOr("INGEST_TZ", "Asia/Shanghai"))
	if err != nil {
		l.Warn("ingest_tz_invalid", "err", err)
		loc = time.UTC
	}
	hour := 3
	if n, err := strconv.Atoi(os.Getenv("INGEST_HOUR")); err == nil && n >= 0 && n < 24 {
		hour = n
	}
	go func() {
		for {
			next := nextWeekdayAt(time.Now().In(loc), time.Monday, hour)
			l.Info("ingest_scheduled", "table", t.Table, "next", next)
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			if _, err := FetchAndImport(ctx, db, t, src); err != nil {
				l.Error("ingest_error", "table", t.Table, "err", err)
				continue
			}
			if onDone != nil {
				onDone(ctx)
			}
		}
	}()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
