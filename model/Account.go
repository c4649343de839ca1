package model

import "time"

// Account 登录凭证，Id 即全局 identity（uuid）
type Account struct {
	Id        string    `gorm:"column:id;type:char(36);primaryKey;comment:用户identity"`
	Email     string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uidx_account_email;comment:登录邮箱"`
	Password  string    `gorm:"column:password;type:varchar(255);not null;comment:bcrypt 密码哈希"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string { return "accounts" }
