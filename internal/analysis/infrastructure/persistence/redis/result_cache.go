package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/pkg/cache"
)

// ResultCache 以输入元组为 key 缓存定价结果
type ResultCache struct {
	cache  *cache.RedisCache
	prefix string
	ttl    time.Duration
}

// NewResultCache 创建定价结果缓存
func NewResultCache(c *cache.RedisCache, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ResultCache{
		cache:  c,
		prefix: "pricing_result:",
		ttl:    ttl,
	}
}

func (r *ResultCache) Get(ctx context.Context, optionType domain.OptionType, in domain.BlackScholesInput) (*domain.BlackScholesResult, error) {
	var res domain.BlackScholesResult
	hit, err := r.cache.GetJSON(ctx, r.key(optionType, in), &res)
	if err != nil || !hit {
		return nil, err
	}
	return &res, nil
}

func (r *ResultCache) Set(ctx context.Context, optionType domain.OptionType, in domain.BlackScholesInput, out *domain.BlackScholesResult) error {
	if out == nil {
		return nil
	}
	return r.cache.SetJSON(ctx, r.key(optionType, in), out, r.ttl)
}

// key 使用最短往返表示，不同输入不会碰撞
func (r *ResultCache) key(optionType domain.OptionType, in domain.BlackScholesInput) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return fmt.Sprintf("%s%s:%s:%s:%s:%s:%s", r.prefix, optionType, f(in.S), f(in.K), f(in.T), f(in.R), f(in.V))
}
