package dictionary

import (
	"math/rand/v2"
	"polydict/internal/config"
	"time"
)

// Lifetime：重载间隔区间，Min=Max=0 表示不重载
type Lifetime struct {
	Min time.Duration
	Max time.Duration
}

// ParseLifetime：lifetime 可写成整数秒或 {min, max}
func ParseLifetime(cfg *config.Config, prefix string) (Lifetime, error) {
	path := config.Join(prefix, "lifetime")
	if !cfg.Has(path) {
		return Lifetime{}, nil
	}
	if len(cfg.Keys(path)) == 0 {
		sec, err := cfg.GetInt(path, 0)
		if err != nil {
			return Lifetime{}, Wrap(ErrBadArguments, err, "invalid lifetime")
		}
		if sec < 0 {
			return Lifetime{}, Errorf(ErrBadArguments, "lifetime must not be negative: %d", sec)
		}
		d := time.Duration(sec) * time.Second
		return Lifetime{Min: d, Max: d}, nil
	}
	lo, err := cfg.GetInt(config.Join(path, "min"), 0)
	if err != nil {
		return Lifetime{}, Wrap(ErrBadArguments, err, "invalid lifetime")
	}
	hi, err := cfg.GetInt(config.Join(path, "max"), lo)
	if err != nil {
		return Lifetime{}, Wrap(ErrBadArguments, err, "invalid lifetime")
	}
	if lo < 0 || hi < lo {
		return Lifetime{}, Errorf(ErrBadArguments, "lifetime range [%d, %d] is invalid", lo, hi)
	}
	return Lifetime{Min: time.Duration(lo) * time.Second, Max: time.Duration(hi) * time.Second}, nil
}

func (l Lifetime) Enabled() bool { return l.Max > 0 }

// Next：在 [Min, Max] 内均匀取值，错开多个字典的重载时刻
func (l Lifetime) Next() time.Duration {
	if l.Max <= l.Min {
		return l.Min
	}
	return l.Min + time.Duration(rand.Int64N(int64(l.Max-l.Min)+1))
}
