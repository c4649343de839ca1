package model

import "time"

// Post 帖子，Id 由 snowflake 生成
type Post struct {
	Id          int64     `gorm:"column:id;primaryKey;autoIncrement:false;comment:帖子id"`
	UserId      string    `gorm:"column:user_id;type:char(36);not null;index:idx_post_user_created;comment:作者"`
	Caption     string    `gorm:"column:caption;type:text;comment:文字"`
	ImageUrl    string    `gorm:"column:image_url;type:varchar(512);comment:图片地址"`
	ImageObject string    `gorm:"column:image_object;type:varchar(512);comment:图片对象名，删除时使用"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index;index:idx_post_user_created"`
}

func (Post) TableName() string { return "posts" }

// AllModels 需要自动迁移的表
func AllModels() []interface{} {
	return []interface{}{&Account{}, &Profile{}, &Follow{}, &Reaction{}, &Post{}}
}
