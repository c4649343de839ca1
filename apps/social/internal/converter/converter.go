package converter

import (
	"strconv"

	"PostServer/apps/social/internal/dto"
	"PostServer/model"
)

// ==================== Profile 转换函数 ====================

// ModelToProfileInfo 将 Profile Model 转换为公开资料
// 注意：不包含 Email、AvatarKey
func ModelToProfileInfo(p *model.Profile) *dto.ProfileInfo {
	if p == nil {
		return nil
	}
	return &dto.ProfileInfo{
		UserUUID:    p.Id,
		Handle:      p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarUrl,
		Biography:   p.Biography,
	}
}

// ==================== Follow 转换函数 ====================

// FollowEdgesToListItems 将关注边与对端资料拼接
// peerOf 返回边的对端 identity；资料缺失的边直接丢弃
func FollowEdgesToListItems(edges []*model.Follow, profiles map[string]*model.Profile, peerOf func(*model.Follow) string) []*dto.FollowListItem {
	items := make([]*dto.FollowListItem, 0, len(edges))
	for _, e := range edges {
		p, ok := profiles[peerOf(e)]
		if !ok || p == nil {
			continue
		}
		items = append(items, &dto.FollowListItem{
			Profile:    ModelToProfileInfo(p),
			FollowedAt: dto.FormatTime(e.CreatedAt),
		})
	}
	return items
}

// ==================== Reaction 转换函数 ====================

// CountReactions 按表情聚合，输出顺序为表情首次出现的顺序
func CountReactions(reactions []*model.Reaction) []*dto.EmojiCount {
	counts := make([]*dto.EmojiCount, 0)
	index := make(map[string]int)
	for _, r := range reactions {
		if i, ok := index[r.Emoji]; ok {
			counts[i].Count++
			continue
		}
		index[r.Emoji] = len(counts)
		counts = append(counts, &dto.EmojiCount{Emoji: r.Emoji, Count: 1})
	}
	return counts
}

// ==================== Post 转换函数 ====================

// ModelToPostItem 将 Post Model 转换为帖子 DTO（不含回应）
func ModelToPostItem(p *model.Post, author *model.Profile) *dto.PostItem {
	if p == nil {
		return nil
	}
	item := &dto.PostItem{
		Id:        strconv.FormatInt(p.Id, 10),
		Caption:   p.Caption,
		ImageURL:  p.ImageUrl,
		CreatedAt: dto.FormatTime(p.CreatedAt),
		Author:    ModelToProfileInfo(author),
		Reactions: []*dto.EmojiCount{},
	}
	if item.Author == nil {
		item.Author = &dto.ProfileInfo{UserUUID: p.UserId}
	}
	return item
}
