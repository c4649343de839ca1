package dto

// ==================== 帖子 DTO ====================

// CreatePostForm 发布帖子表单（multipart，图片字段名 image）
type CreatePostForm struct {
	Caption string `form:"caption" binding:"omitempty,max=8000"`
}

// PostItem 帖子
// Id 为 snowflake，以字符串输出避免前端精度丢失
type PostItem struct {
	Id         string        `json:"id"`
	Caption    string        `json:"caption"`
	ImageURL   string        `json:"imageUrl"`
	CreatedAt  string        `json:"createdAt"`
	Author     *ProfileInfo  `json:"author"`
	Reactions  []*EmojiCount `json:"reactions"`
	MyReaction string        `json:"myReaction"`
}

// PostListResponse 帖子列表
type PostListResponse struct {
	Items []*PostItem `json:"items"`
}

// ==================== 表情回应 DTO ====================

// ReactRequest 添加/替换回应
type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required,max=32"`
}

// EmojiCount 单个表情的计数
type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

// ReactionStateResponse 回应状态
type ReactionStateResponse struct {
	Emoji  string        `json:"emoji"`
	Counts []*EmojiCount `json:"counts"`
}
