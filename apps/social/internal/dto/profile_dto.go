package dto

// SetupProfileRequest 资料设置请求
// 长度按字符计算，binding 只做粗校验，精确校验在 service 层
type SetupProfileRequest struct {
	Handle      string `json:"handle" binding:"required,handle"`
	DisplayName string `json:"displayName" binding:"omitempty,max=200"`
	Biography   string `json:"biography" binding:"omitempty,max=2000"`
}

// ProfilePage 个人主页
type ProfilePage struct {
	Profile   *ProfileInfo `json:"profile"`
	Stats     *FollowStats `json:"stats"`
	PostCount int64        `json:"postCount"`
}

// UploadAvatarResponse 上传头像响应
type UploadAvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}
