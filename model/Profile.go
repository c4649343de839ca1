package model

import "time"

// Profile 用户公开资料，Username 为主页 slug（handle）。
// 约束：uidx_username 保证同一时刻一个 handle 只属于一个 identity。
type Profile struct {
	Id          string    `gorm:"column:id;type:char(36);primaryKey;comment:用户identity"`
	Username    string    `gorm:"column:username;type:varchar(20);not null;uniqueIndex:uidx_username;comment:用户ID(handle)"`
	DisplayName string    `gorm:"column:display_name;type:varchar(200);comment:显示名称"`
	AvatarUrl   string    `gorm:"column:avatar_url;type:varchar(512);comment:头像地址"`
	AvatarKey   string    `gorm:"column:avatar_key;type:varchar(512);comment:头像对象名"`
	Biography   string    `gorm:"column:biography;type:text;comment:简介"`
	Email       string    `gorm:"column:email;type:varchar(255);comment:邮箱"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Profile) TableName() string { return "usernames" }
