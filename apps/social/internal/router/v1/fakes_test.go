package v1

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/service"
	"PostServer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var handlerTestOnce sync.Once

func initHandlerTest() {
	handlerTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
}

type resultBody struct {
	Code int32           `json:"code"`
	Data json.RawMessage `json:"data"`
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) resultBody {
	t.Helper()
	var body resultBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// withUser 模拟认证中间件写入的身份信息
func withUser(identity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity != "" {
			c.Set("user_uuid", identity)
			c.Set("jti", "jti-"+identity)
			c.Set("token_exp", time.Unix(1900000000, 0))
		}
		c.Next()
	}
}

// ==================== 认证 ====================

type fakeAuthService struct {
	service.IAuthService

	registerFn      func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	loginFn         func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	logoutFn        func(ctx context.Context, identity, tokenID string, expiresAt time.Time) error
	requestResetFn  func(ctx context.Context, email string) error
	resetPasswordFn func(ctx context.Context, token, newPassword string) error
}

var _ service.IAuthService = (*fakeAuthService)(nil)

func (f *fakeAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if f.registerFn == nil {
		return &dto.AuthResponse{}, nil
	}
	return f.registerFn(ctx, req)
}

func (f *fakeAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if f.loginFn == nil {
		return &dto.AuthResponse{}, nil
	}
	return f.loginFn(ctx, req)
}

func (f *fakeAuthService) Logout(ctx context.Context, identity, tokenID string, expiresAt time.Time) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx, identity, tokenID, expiresAt)
}

func (f *fakeAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if f.requestResetFn == nil {
		return nil
	}
	return f.requestResetFn(ctx, email)
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if f.resetPasswordFn == nil {
		return nil
	}
	return f.resetPasswordFn(ctx, token, newPassword)
}

// ==================== 资料 ====================

type fakeProfileService struct {
	getByHandleFn  func(ctx context.Context, handle string) (*dto.ProfilePage, error)
	getMineFn      func(ctx context.Context, identity string) (*dto.ProfileInfo, error)
	setupFn        func(ctx context.Context, identity string, req *dto.SetupProfileRequest) (*dto.ProfileInfo, error)
	updateAvatarFn func(ctx context.Context, identity string, file *service.FileInput) (*dto.UploadAvatarResponse, error)
}

var _ service.IProfileService = (*fakeProfileService)(nil)

func (f *fakeProfileService) GetByHandle(ctx context.Context, handle string) (*dto.ProfilePage, error) {
	if f.getByHandleFn == nil {
		return &dto.ProfilePage{}, nil
	}
	return f.getByHandleFn(ctx, handle)
}

func (f *fakeProfileService) GetMine(ctx context.Context, identity string) (*dto.ProfileInfo, error) {
	if f.getMineFn == nil {
		return &dto.ProfileInfo{UserUUID: identity}, nil
	}
	return f.getMineFn(ctx, identity)
}

func (f *fakeProfileService) Setup(ctx context.Context, identity string, req *dto.SetupProfileRequest) (*dto.ProfileInfo, error) {
	if f.setupFn == nil {
		return &dto.ProfileInfo{UserUUID: identity, Handle: req.Handle}, nil
	}
	return f.setupFn(ctx, identity, req)
}

func (f *fakeProfileService) UpdateAvatar(ctx context.Context, identity string, file *service.FileInput) (*dto.UploadAvatarResponse, error) {
	if f.updateAvatarFn == nil {
		return &dto.UploadAvatarResponse{}, nil
	}
	return f.updateAvatarFn(ctx, identity, file)
}

// ==================== 关注 ====================

type fakeFollowService struct {
	service.IFollowService

	followFn        func(ctx context.Context, actor, target string) (*dto.FollowResult, error)
	unfollowFn      func(ctx context.Context, actor, target string) error
	followStatsFn   func(ctx context.Context, identity string) *dto.FollowStats
	followStateFn   func(ctx context.Context, actor, target string) *dto.FollowState
	followingListFn func(ctx context.Context, actor string) ([]*dto.FollowListItem, error)
	followerListFn  func(ctx context.Context, identity string) ([]*dto.FollowListItem, error)
}

var _ service.IFollowService = (*fakeFollowService)(nil)

func (f *fakeFollowService) Follow(ctx context.Context, actor, target string) (*dto.FollowResult, error) {
	if f.followFn == nil {
		return &dto.FollowResult{Following: true}, nil
	}
	return f.followFn(ctx, actor, target)
}

func (f *fakeFollowService) Unfollow(ctx context.Context, actor, target string) error {
	if f.unfollowFn == nil {
		return nil
	}
	return f.unfollowFn(ctx, actor, target)
}

func (f *fakeFollowService) FollowStats(ctx context.Context, identity string) *dto.FollowStats {
	if f.followStatsFn == nil {
		return &dto.FollowStats{}
	}
	return f.followStatsFn(ctx, identity)
}

func (f *fakeFollowService) FollowState(ctx context.Context, actor, target string) *dto.FollowState {
	if f.followStateFn == nil {
		return &dto.FollowState{}
	}
	return f.followStateFn(ctx, actor, target)
}

func (f *fakeFollowService) FollowingList(ctx context.Context, actor string) ([]*dto.FollowListItem, error) {
	if f.followingListFn == nil {
		return nil, nil
	}
	return f.followingListFn(ctx, actor)
}

func (f *fakeFollowService) FollowerList(ctx context.Context, identity string) ([]*dto.FollowListItem, error) {
	if f.followerListFn == nil {
		return nil, nil
	}
	return f.followerListFn(ctx, identity)
}

// ==================== 帖子 / 回应 ====================

type fakePostService struct {
	createFn       func(ctx context.Context, author, caption string, image *service.FileInput) (*dto.PostItem, error)
	deleteFn       func(ctx context.Context, actor string, postID int64) error
	listAllFn      func(ctx context.Context, viewer string) ([]*dto.PostItem, error)
	listByAuthorFn func(ctx context.Context, handle, viewer string) ([]*dto.PostItem, error)
}

var _ service.IPostService = (*fakePostService)(nil)

func (f *fakePostService) Create(ctx context.Context, author, caption string, image *service.FileInput) (*dto.PostItem, error) {
	if f.createFn == nil {
		return &dto.PostItem{}, nil
	}
	return f.createFn(ctx, author, caption, image)
}

func (f *fakePostService) Delete(ctx context.Context, actor string, postID int64) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, actor, postID)
}

func (f *fakePostService) ListAll(ctx context.Context, viewer string) ([]*dto.PostItem, error) {
	if f.listAllFn == nil {
		return nil, nil
	}
	return f.listAllFn(ctx, viewer)
}

func (f *fakePostService) ListByAuthor(ctx context.Context, handle, viewer string) ([]*dto.PostItem, error) {
	if f.listByAuthorFn == nil {
		return nil, nil
	}
	return f.listByAuthorFn(ctx, handle, viewer)
}

type fakeReactionService struct {
	addOrReplaceFn  func(ctx context.Context, postID int64, reactor, emoji string) error
	removeFn        func(ctx context.Context, postID int64, reactor string) error
	countsByEmojiFn func(ctx context.Context, postID int64) []*dto.EmojiCount
	reactionOfFn    func(ctx context.Context, reactor string, postID int64) (string, bool)
}

var _ service.IReactionService = (*fakeReactionService)(nil)

func (f *fakeReactionService) AddOrReplace(ctx context.Context, postID int64, reactor, emoji string) error {
	if f.addOrReplaceFn == nil {
		return nil
	}
	return f.addOrReplaceFn(ctx, postID, reactor, emoji)
}

func (f *fakeReactionService) Remove(ctx context.Context, postID int64, reactor string) error {
	if f.removeFn == nil {
		return nil
	}
	return f.removeFn(ctx, postID, reactor)
}

func (f *fakeReactionService) CountsByEmoji(ctx context.Context, postID int64) []*dto.EmojiCount {
	if f.countsByEmojiFn == nil {
		return []*dto.EmojiCount{}
	}
	return f.countsByEmojiFn(ctx, postID)
}

func (f *fakeReactionService) ReactionOf(ctx context.Context, reactor string, postID int64) (string, bool) {
	if f.reactionOfFn == nil {
		return "", false
	}
	return f.reactionOfFn(ctx, reactor, postID)
}
