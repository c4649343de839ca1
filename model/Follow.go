package model

import "time"

// Follow 单向关注边 follower -> following。
// 约束：uidx_follow_pair 保证同一有序对最多一条边；自关注在业务层拒绝。
type Follow struct {
	Id          int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	FollowerId  string    `gorm:"column:follower_id;type:char(36);not null;uniqueIndex:uidx_follow_pair;index:idx_follower_created;comment:关注者"`
	FollowingId string    `gorm:"column:following_id;type:char(36);not null;uniqueIndex:uidx_follow_pair;index:idx_following_created;comment:被关注者"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index:idx_follower_created;index:idx_following_created"`
}

func (Follow) TableName() string { return "follows" }
