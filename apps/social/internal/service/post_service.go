package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"PostServer/apps/social/internal/converter"
	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/repository"
	"PostServer/consts"
	"PostServer/model"
	"PostServer/pkg/logger"
	"PostServer/pkg/minio"
	"PostServer/pkg/util"

	"google.golang.org/grpc/codes"
)

const maxCaptionRunes = 2000

// postServiceImpl 帖子服务实现
type postServiceImpl struct {
	postRepo     repository.IPostRepository
	reactionRepo repository.IReactionRepository
	profileRepo  repository.IProfileRepository
	revalidator  Revalidator
	store        minio.Store
	genID        func() int64
	now          func() time.Time
}

// NewPostService 创建帖子服务实例
func NewPostService(
	postRepo repository.IPostRepository,
	reactionRepo repository.IReactionRepository,
	profileRepo repository.IProfileRepository,
	revalidator Revalidator,
	store minio.Store,
) IPostService {
	return &postServiceImpl{
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		profileRepo:  profileRepo,
		revalidator:  revalidator,
		store:        store,
		genID:        util.GenID,
		now:          time.Now,
	}
}

// Create 发布帖子
// 图片路径 {author}/{postID}/{unixMillis}.{ext}；写库失败时删除已上传的图片
func (s *postServiceImpl) Create(ctx context.Context, author, caption string, image *FileInput) (*dto.PostItem, error) {
	if author == "" {
		return nil, errUnauthenticated
	}
	caption = strings.TrimSpace(caption)
	if caption == "" && image == nil {
		return nil, bizError(codes.InvalidArgument, consts.CodePostEmpty)
	}
	if utf8.RuneCountInString(caption) > maxCaptionRunes {
		return nil, bizError(codes.InvalidArgument, consts.CodeCaptionTooLong)
	}

	profile, err := s.profileRepo.GetByID(ctx, author)
	if err != nil {
		return nil, storageError(ctx, "查询作者资料失败", err)
	}

	post := &model.Post{Id: s.genID(), UserId: author, Caption: caption, CreatedAt: s.now()}

	if image != nil {
		img, err := sniffImage(image)
		if err != nil {
			return nil, err
		}
		res, err := uploadImage(ctx, s.store, img, fmt.Sprintf("%s/%d", author, post.Id), post.CreatedAt)
		if err != nil {
			return nil, err
		}
		post.ImageUrl, post.ImageObject = res.URL, res.ObjectName
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		removeObjectAsync(ctx, s.store, post.ImageObject)
		return nil, storageError(ctx, "插入帖子失败", err)
	}
	logger.Info(ctx, "帖子已发布", logger.Int64("post_id", post.Id), logger.Bool("has_image", post.ImageObject != ""))

	if profile != nil {
		s.revalidator.RevalidateProfiles(ctx, profile.Username)
	}
	return converter.ModelToPostItem(post, profile), nil
}

// Delete 删除帖子
//
// 错误码映射：
//   - codes.Unauthenticated: 未登录
//   - codes.NotFound: 帖子不存在
//   - codes.PermissionDenied: 不是作者
//   - codes.Internal: 存储异常
func (s *postServiceImpl) Delete(ctx context.Context, actor string, postID int64) error {
	if actor == "" {
		return errUnauthenticated
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return storageError(ctx, "查询帖子失败", err)
	}
	if post == nil {
		return bizError(codes.NotFound, consts.CodePostNotFound)
	}
	if post.UserId != actor {
		return bizError(codes.PermissionDenied, consts.CodeNotPostOwner)
	}

	if err := s.postRepo.DeleteWithReactions(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return bizError(codes.NotFound, consts.CodePostNotFound)
		}
		return storageError(ctx, "删除帖子失败", err)
	}
	removeObjectAsync(ctx, s.store, post.ImageObject)
	logger.Info(ctx, "帖子已删除", logger.Int64("post_id", postID))

	if profile, err := s.profileRepo.GetByID(ctx, actor); err == nil && profile != nil {
		s.revalidator.RevalidateProfiles(ctx, profile.Username)
	}
	return nil
}

// ListAll 全站时间线
func (s *postServiceImpl) ListAll(ctx context.Context, viewer string) ([]*dto.PostItem, error) {
	posts, err := s.postRepo.ListAll(ctx, 0)
	if err != nil {
		return nil, storageError(ctx, "查询帖子列表失败", err)
	}
	return s.decorate(ctx, posts, viewer)
}

// ListByAuthor 某个 handle 的帖子
func (s *postServiceImpl) ListByAuthor(ctx context.Context, handle, viewer string) ([]*dto.PostItem, error) {
	if !ValidHandle(handle) {
		return nil, bizError(codes.NotFound, consts.CodeProfileNotFound)
	}
	profile, err := s.profileRepo.GetByUsername(ctx, handle)
	if err != nil {
		return nil, storageError(ctx, "查询资料失败", err)
	}
	if profile == nil {
		return nil, bizError(codes.NotFound, consts.CodeProfileNotFound)
	}
	posts, err := s.postRepo.ListByUser(ctx, profile.Id, 0)
	if err != nil {
		return nil, storageError(ctx, "查询帖子列表失败", err)
	}
	return s.decorate(ctx, posts, viewer)
}

// decorate 拼接作者资料、表情计数和查看者自己的回应
// 作者资料缺失的帖子保留，作者只带 identity
func (s *postServiceImpl) decorate(ctx context.Context, posts []*model.Post, viewer string) ([]*dto.PostItem, error) {
	if len(posts) == 0 {
		return []*dto.PostItem{}, nil
	}

	authorIDs := make([]string, 0, len(posts))
	postIDs := make([]int64, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.UserId)
		postIDs = append(postIDs, p.Id)
	}

	authors, err := s.profileRepo.BatchGetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, storageError(ctx, "批量查询作者资料失败", err)
	}

	// 回应查询失败时降级为空计数
	byPost := make(map[int64][]*model.Reaction, len(posts))
	reactions, err := s.reactionRepo.ListByPosts(ctx, postIDs)
	if err != nil {
		logger.Warn(ctx, "批量查询回应失败", logger.ErrorField("error", err))
	}
	for _, r := range reactions {
		byPost[r.PostId] = append(byPost[r.PostId], r)
	}

	items := make([]*dto.PostItem, 0, len(posts))
	for _, p := range posts {
		item := converter.ModelToPostItem(p, authors[p.UserId])
		item.Reactions = converter.CountReactions(byPost[p.Id])
		if viewer != "" {
			for _, r := range byPost[p.Id] {
				if r.UserId == viewer {
					item.MyReaction = r.Emoji
					break
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}
