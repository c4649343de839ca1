package repository

import (
	"math/rand"
	"time"
)

// emptyPlaceholder 空值缓存占位符，防止缓存穿透
const emptyPlaceholder = "{}"

// getRandomExpireTime 生成带随机抖动的过期时间（基础时间 ±10%），防止缓存雪崩
func getRandomExpireTime(baseExpire time.Duration) time.Duration {
	jitterRange := float64(baseExpire) * 0.1
	jitter := time.Duration(rand.Float64()*jitterRange*2 - jitterRange)
	return baseExpire + jitter
}

// uniqueStrings 去重并保持顺序，跳过空串
func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
