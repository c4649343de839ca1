package model

import "time"

// Reaction 用户对帖子的表情回应，每个 (post, user) 最多一条。
type Reaction struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	PostId    int64     `gorm:"column:post_id;not null;uniqueIndex:uidx_reaction_post_user;comment:帖子id"`
	UserId    string    `gorm:"column:user_id;type:char(36);not null;uniqueIndex:uidx_reaction_post_user;index;comment:回应者"`
	Emoji     string    `gorm:"column:emoji;type:varchar(32);not null;comment:表情"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Reaction) TableName() string { return "reactions" }
