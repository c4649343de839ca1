package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"PostServer/apps/social/internal/converter"
	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/repository"
	"PostServer/consts"
	"PostServer/model"
	"PostServer/pkg/logger"

	"google.golang.org/grpc/codes"
)

// maxEmojiBytes 与 reactions.emoji 列宽一致
const maxEmojiBytes = 32

// reactionServiceImpl 表情回应服务实现
type reactionServiceImpl struct {
	reactionRepo repository.IReactionRepository
	postRepo     repository.IPostRepository
}

// NewReactionService 创建表情回应服务实例
func NewReactionService(reactionRepo repository.IReactionRepository, postRepo repository.IPostRepository) IReactionService {
	return &reactionServiceImpl{reactionRepo: reactionRepo, postRepo: postRepo}
}

// AddOrReplace 添加或替换回应
// 先读后写：已有回应则更新表情，否则插入。
// 并发插入撞上 uidx_reaction_post_user 时回退为更新，保证每个 (post, user) 只有一行
func (s *reactionServiceImpl) AddOrReplace(ctx context.Context, postID int64, reactor, emoji string) error {
	if reactor == "" {
		return errUnauthenticated
	}
	emoji = strings.TrimSpace(emoji)
	if !validEmoji(emoji) {
		return bizError(codes.InvalidArgument, consts.CodeEmojiInvalid)
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return storageError(ctx, "查询帖子失败", err)
	}
	if post == nil {
		return bizError(codes.NotFound, consts.CodePostNotFound)
	}

	existing, err := s.reactionRepo.Get(ctx, postID, reactor)
	if err != nil {
		return storageError(ctx, "查询回应失败", err)
	}
	if existing != nil {
		return s.replace(ctx, existing, emoji)
	}

	err = s.reactionRepo.Create(ctx, &model.Reaction{PostId: postID, UserId: reactor, Emoji: emoji})
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return storageError(ctx, "插入回应失败", err)
	}

	logger.Info(ctx, "并发插入回应冲突，改为更新", logger.Int64("post_id", postID))
	existing, err = s.reactionRepo.Get(ctx, postID, reactor)
	if err != nil {
		return storageError(ctx, "查询回应失败", err)
	}
	if existing == nil {
		// 冲突行在两次查询之间被删除
		return storageError(ctx, "回应冲突后记录消失", repository.ErrRecordNotFound)
	}
	return s.replace(ctx, existing, emoji)
}

func (s *reactionServiceImpl) replace(ctx context.Context, existing *model.Reaction, emoji string) error {
	if existing.Emoji == emoji {
		return nil
	}
	if err := s.reactionRepo.UpdateEmoji(ctx, existing.Id, emoji); err != nil {
		return storageError(ctx, "更新回应失败", err)
	}
	return nil
}

// Remove 删除回应，不存在时为空操作
func (s *reactionServiceImpl) Remove(ctx context.Context, postID int64, reactor string) error {
	if reactor == "" {
		return errUnauthenticated
	}
	if err := s.reactionRepo.Delete(ctx, postID, reactor); err != nil {
		return storageError(ctx, "删除回应失败", err)
	}
	return nil
}

// CountsByEmoji 按表情计数，查询失败返回空列表
func (s *reactionServiceImpl) CountsByEmoji(ctx context.Context, postID int64) []*dto.EmojiCount {
	reactions, err := s.reactionRepo.ListByPost(ctx, postID)
	if err != nil {
		logger.Warn(ctx, "查询帖子回应失败", logger.Int64("post_id", postID), logger.ErrorField("error", err))
		return []*dto.EmojiCount{}
	}
	return converter.CountReactions(reactions)
}

// ReactionOf 查询用户当前的回应
func (s *reactionServiceImpl) ReactionOf(ctx context.Context, reactor string, postID int64) (string, bool) {
	if reactor == "" {
		return "", false
	}
	r, err := s.reactionRepo.Get(ctx, postID, reactor)
	if err != nil {
		logger.Warn(ctx, "查询用户回应失败", logger.Int64("post_id", postID), logger.ErrorField("error", err))
		return "", false
	}
	if r == nil {
		return "", false
	}
	return r.Emoji, true
}

// validEmoji 非空的合法 UTF-8，长度不超过列宽
// ASCII 只允许作为键帽表情的基字符（0-9 # *，后接 U+FE0F 或 U+20E3）
func validEmoji(emoji string) bool {
	if emoji == "" || len(emoji) > maxEmojiBytes || !utf8.ValidString(emoji) {
		return false
	}
	runes := []rune(emoji)
	for i, r := range runes {
		if r >= utf8.RuneSelf {
			continue
		}
		if !isKeycapBase(r) || i+1 >= len(runes) {
			return false
		}
		if next := runes[i+1]; next != '\uFE0F' && next != '\u20E3' {
			return false
		}
	}
	return true
}

func isKeycapBase(r rune) bool {
	return (r >= '0' && r <= '9') || r == '#' || r == '*'
}
