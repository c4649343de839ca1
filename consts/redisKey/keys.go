package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// ProfilePageTTL 个人主页缓存 TTL
	ProfilePageTTL = 10 * time.Minute
	// ProfilePageEmptyTTL 个人主页空值缓存 TTL
	ProfilePageEmptyTTL = 1 * time.Minute

	// ProfileTTL 资料缓存 TTL（按 identity）
	ProfileTTL = 1 * time.Hour

	// PasswordResetTTL 重置密码令牌有效期
	PasswordResetTTL = 30 * time.Minute
)

// ==================== Key 构造函数 ====================

// ProfilePageKey 个人主页缓存 Key: profile:page:{handle}
func ProfilePageKey(handle string) string {
	return fmt.Sprintf("profile:page:%s", handle)
}

// ProfileKey 资料缓存 Key: profile:info:{user_uuid}
func ProfileKey(userUUID string) string {
	return fmt.Sprintf("profile:info:%s", userUUID)
}

// PasswordResetKey 重置密码令牌 Key: auth:reset:{token}
func PasswordResetKey(token string) string {
	return fmt.Sprintf("auth:reset:%s", token)
}

// RevokedTokenKey 已注销的访问令牌 Key: auth:revoked:{jti}
func RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// ==================== 限流 Key 构造函数 ====================

// IPBlacklistKey IP 黑名单 Key: rate:blacklist:ips
func IPBlacklistKey() string {
	return "rate:blacklist:ips"
}

// UserRateLimitKey 用户限流 Key: rate:limit:user:{user_uuid}
func UserRateLimitKey(userUUID string) string {
	return fmt.Sprintf("rate:limit:user:%s", userUUID)
}

// IPRateLimitKey IP 限流 Key: rate:limit:ip:{ip}
func IPRateLimitKey(ip string) string {
	return fmt.Sprintf("rate:limit:ip:%s", ip)
}
