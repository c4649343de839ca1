package dto

import "time"

// ProfileInfo 公开资料
type ProfileInfo struct {
	UserUUID    string `json:"userUuid"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Biography   string `json:"biography"`
}

// EmptyResponse 无数据的成功响应
type EmptyResponse struct{}

// FormatTime 统一输出 RFC3339 毫秒时间
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
