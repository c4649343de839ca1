package dto

// FollowStats 关注统计
type FollowStats struct {
	FollowingCount int64 `json:"followingCount"`
	FollowerCount  int64 `json:"followerCount"`
	// Degraded 任一计数查询失败、以 0 代替时为 true，不输出
	Degraded bool `json:"-"`
}

// FollowResult 关注操作结果
// Mutual 供前端在不刷新的情况下切换为互相关注状态
type FollowResult struct {
	Following bool `json:"following"`
	Mutual    bool `json:"mutual"`
}

// FollowState 查看者与目标之间的关注状态
type FollowState struct {
	Following  bool `json:"following"`
	FollowedBy bool `json:"followedBy"`
	Mutual     bool `json:"mutual"`
}

// FollowListItem 关注/粉丝列表项
type FollowListItem struct {
	Profile    *ProfileInfo `json:"profile"`
	FollowedAt string       `json:"followedAt"`
}

// FollowListResponse 关注/粉丝列表响应
type FollowListResponse struct {
	Items []*FollowListItem `json:"items"`
	Total int               `json:"total"`
}
