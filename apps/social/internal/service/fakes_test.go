package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"PostServer/model"
	"PostServer/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var serviceLoggerOnce sync.Once

func initServiceTestLogger() {
	serviceLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

func requireStatusBizCode(t *testing.T, err error, wantGRPCCode codes.Code, wantBizCode int) {
	t.Helper()
	require.Error(t, err)

	st, ok := status.FromError(err)
	require.True(t, ok, "error should be grpc status")
	require.Equal(t, wantGRPCCode, st.Code())

	gotBizCode, convErr := strconv.Atoi(st.Message())
	require.NoError(t, convErr, "status message should be business code")
	require.Equal(t, wantBizCode, gotBizCode)
}

// ==================== 账号 ====================

type fakeAccountRepository struct {
	createFn         func(ctx context.Context, account *model.Account) error
	getByEmailFn     func(ctx context.Context, email string) (*model.Account, error)
	getByIDFn        func(ctx context.Context, id string) (*model.Account, error)
	updatePasswordFn func(ctx context.Context, id, hashedPassword string) error
}

func (f *fakeAccountRepository) Create(ctx context.Context, account *model.Account) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, account)
}

func (f *fakeAccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	if f.getByEmailFn == nil {
		return nil, nil
	}
	return f.getByEmailFn(ctx, email)
}

func (f *fakeAccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if f.getByIDFn == nil {
		return nil, nil
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeAccountRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	if f.updatePasswordFn == nil {
		return nil
	}
	return f.updatePasswordFn(ctx, id, hashedPassword)
}

// ==================== 资料 ====================

type fakeProfileRepository struct {
	getByIDFn          func(ctx context.Context, id string) (*model.Profile, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.Profile, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	batchGetByIDsFn    func(ctx context.Context, ids []string) (map[string]*model.Profile, error)
	createFn           func(ctx context.Context, profile *model.Profile) error
	updateBasicFn      func(ctx context.Context, id, username, displayName, biography string) error
	updateAvatarFn     func(ctx context.Context, id, avatarURL, avatarKey string) error
}

func (f *fakeProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	if f.getByIDFn == nil {
		return nil, nil
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeProfileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	if f.getByUsernameFn == nil {
		return nil, nil
	}
	return f.getByUsernameFn(ctx, username)
}

func (f *fakeProfileRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if f.existsByUsernameFn == nil {
		return false, nil
	}
	return f.existsByUsernameFn(ctx, username)
}

func (f *fakeProfileRepository) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Profile, error) {
	if f.batchGetByIDsFn == nil {
		return map[string]*model.Profile{}, nil
	}
	return f.batchGetByIDsFn(ctx, ids)
}

func (f *fakeProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, profile)
}

func (f *fakeProfileRepository) UpdateBasic(ctx context.Context, id, username, displayName, biography string) error {
	if f.updateBasicFn == nil {
		return nil
	}
	return f.updateBasicFn(ctx, id, username, displayName, biography)
}

func (f *fakeProfileRepository) UpdateAvatar(ctx context.Context, id, avatarURL, avatarKey string) error {
	if f.updateAvatarFn == nil {
		return nil
	}
	return f.updateAvatarFn(ctx, id, avatarURL, avatarKey)
}

// profilesByID 以 map 提供 GetByID / BatchGetByIDs / GetByUsername
func profilesByID(profiles ...*model.Profile) *fakeProfileRepository {
	byID := make(map[string]*model.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.Id] = p
	}
	return &fakeProfileRepository{
		getByIDFn: func(_ context.Context, id string) (*model.Profile, error) {
			return byID[id], nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*model.Profile, error) {
			for _, p := range byID {
				if p.Username == username {
					return p, nil
				}
			}
			return nil, nil
		},
		batchGetByIDsFn: func(_ context.Context, ids []string) (map[string]*model.Profile, error) {
			out := make(map[string]*model.Profile)
			for _, id := range ids {
				if p, ok := byID[id]; ok {
					out[id] = p
				}
			}
			return out, nil
		},
	}
}

// ==================== 关注 ====================

type fakeFollowRepository struct {
	createFn         func(ctx context.Context, followerID, followingID string) error
	deleteFn         func(ctx context.Context, followerID, followingID string) error
	existsFn         func(ctx context.Context, followerID, followingID string) (bool, error)
	countFollowingFn func(ctx context.Context, id string) (int64, error)
	countFollowersFn func(ctx context.Context, id string) (int64, error)
	listFollowingFn  func(ctx context.Context, id string) ([]*model.Follow, error)
	listFollowersFn  func(ctx context.Context, id string) ([]*model.Follow, error)
}

func (f *fakeFollowRepository) Create(ctx context.Context, followerID, followingID string) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, followerID, followingID)
}

func (f *fakeFollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, followerID, followingID)
}

func (f *fakeFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	if f.existsFn == nil {
		return false, nil
	}
	return f.existsFn(ctx, followerID, followingID)
}

func (f *fakeFollowRepository) CountFollowing(ctx context.Context, id string) (int64, error) {
	if f.countFollowingFn == nil {
		return 0, nil
	}
	return f.countFollowingFn(ctx, id)
}

func (f *fakeFollowRepository) CountFollowers(ctx context.Context, id string) (int64, error) {
	if f.countFollowersFn == nil {
		return 0, nil
	}
	return f.countFollowersFn(ctx, id)
}

func (f *fakeFollowRepository) ListFollowing(ctx context.Context, id string) ([]*model.Follow, error) {
	if f.listFollowingFn == nil {
		return nil, nil
	}
	return f.listFollowingFn(ctx, id)
}

func (f *fakeFollowRepository) ListFollowers(ctx context.Context, id string) ([]*model.Follow, error) {
	if f.listFollowersFn == nil {
		return nil, nil
	}
	return f.listFollowersFn(ctx, id)
}

// memFollowGraph 内存关注边集合，用于验证关注语义
type memFollowGraph struct {
	mu    sync.Mutex
	edges map[[2]string]time.Time
}

func newMemFollowGraph() *memFollowGraph {
	return &memFollowGraph{edges: make(map[[2]string]time.Time)}
}

func (g *memFollowGraph) repo() *fakeFollowRepository {
	return &fakeFollowRepository{
		createFn: func(_ context.Context, a, b string) error {
			g.mu.Lock()
			defer g.mu.Unlock()
			if _, ok := g.edges[[2]string{a, b}]; !ok {
				g.edges[[2]string{a, b}] = time.Now()
			}
			return nil
		},
		deleteFn: func(_ context.Context, a, b string) error {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.edges, [2]string{a, b})
			return nil
		},
		existsFn: func(_ context.Context, a, b string) (bool, error) {
			g.mu.Lock()
			defer g.mu.Unlock()
			_, ok := g.edges[[2]string{a, b}]
			return ok, nil
		},
		countFollowingFn: func(_ context.Context, id string) (int64, error) {
			return g.count(func(e [2]string) bool { return e[0] == id }), nil
		},
		countFollowersFn: func(_ context.Context, id string) (int64, error) {
			return g.count(func(e [2]string) bool { return e[1] == id }), nil
		},
	}
}

func (g *memFollowGraph) count(match func([2]string) bool) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	var n int64
	for e := range g.edges {
		if match(e) {
			n++
		}
	}
	return n
}

// ==================== 表情回应 ====================

type fakeReactionRepository struct {
	getFn         func(ctx context.Context, postID int64, userID string) (*model.Reaction, error)
	createFn      func(ctx context.Context, reaction *model.Reaction) error
	updateEmojiFn func(ctx context.Context, id int64, emoji string) error
	deleteFn      func(ctx context.Context, postID int64, userID string) error
	listByPostFn  func(ctx context.Context, postID int64) ([]*model.Reaction, error)
	listByPostsFn func(ctx context.Context, postIDs []int64) ([]*model.Reaction, error)
}

func (f *fakeReactionRepository) Get(ctx context.Context, postID int64, userID string) (*model.Reaction, error) {
	if f.getFn == nil {
		return nil, nil
	}
	return f.getFn(ctx, postID, userID)
}

func (f *fakeReactionRepository) Create(ctx context.Context, reaction *model.Reaction) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, reaction)
}

func (f *fakeReactionRepository) UpdateEmoji(ctx context.Context, id int64, emoji string) error {
	if f.updateEmojiFn == nil {
		return nil
	}
	return f.updateEmojiFn(ctx, id, emoji)
}

func (f *fakeReactionRepository) Delete(ctx context.Context, postID int64, userID string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, postID, userID)
}

func (f *fakeReactionRepository) ListByPost(ctx context.Context, postID int64) ([]*model.Reaction, error) {
	if f.listByPostFn == nil {
		return nil, nil
	}
	return f.listByPostFn(ctx, postID)
}

func (f *fakeReactionRepository) ListByPosts(ctx context.Context, postIDs []int64) ([]*model.Reaction, error) {
	if f.listByPostsFn == nil {
		return nil, nil
	}
	return f.listByPostsFn(ctx, postIDs)
}

// memReactions 内存回应表，按插入顺序保存
type memReactions struct {
	mu     sync.Mutex
	nextID int64
	rows   []*model.Reaction
}

func (m *memReactions) repo() *fakeReactionRepository {
	find := func(postID int64, userID string) *model.Reaction {
		for _, r := range m.rows {
			if r.PostId == postID && r.UserId == userID {
				return r
			}
		}
		return nil
	}
	return &fakeReactionRepository{
		getFn: func(_ context.Context, postID int64, userID string) (*model.Reaction, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if r := find(postID, userID); r != nil {
				cp := *r
				return &cp, nil
			}
			return nil, nil
		},
		createFn: func(_ context.Context, r *model.Reaction) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.nextID++
			r.Id = m.nextID
			cp := *r
			m.rows = append(m.rows, &cp)
			return nil
		},
		updateEmojiFn: func(_ context.Context, id int64, emoji string) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			for _, r := range m.rows {
				if r.Id == id {
					r.Emoji = emoji
				}
			}
			return nil
		},
		deleteFn: func(_ context.Context, postID int64, userID string) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			kept := m.rows[:0]
			for _, r := range m.rows {
				if !(r.PostId == postID && r.UserId == userID) {
					kept = append(kept, r)
				}
			}
			m.rows = kept
			return nil
		},
		listByPostFn: func(_ context.Context, postID int64) ([]*model.Reaction, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var out []*model.Reaction
			for _, r := range m.rows {
				if r.PostId == postID {
					cp := *r
					out = append(out, &cp)
				}
			}
			return out, nil
		},
	}
}

func (m *memReactions) rowsFor(postID int64, userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.PostId == postID && r.UserId == userID {
			n++
		}
	}
	return n
}

// ==================== 帖子 ====================

type fakePostRepository struct {
	createFn              func(ctx context.Context, post *model.Post) error
	getByIDFn             func(ctx context.Context, id int64) (*model.Post, error)
	deleteWithReactionsFn func(ctx context.Context, id int64) error
	listAllFn             func(ctx context.Context, limit int) ([]*model.Post, error)
	listByUserFn          func(ctx context.Context, userID string, limit int) ([]*model.Post, error)
	countByUserFn         func(ctx context.Context, userID string) (int64, error)
}

func (f *fakePostRepository) Create(ctx context.Context, post *model.Post) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, post)
}

func (f *fakePostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	if f.getByIDFn == nil {
		return nil, nil
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakePostRepository) DeleteWithReactions(ctx context.Context, id int64) error {
	if f.deleteWithReactionsFn == nil {
		return nil
	}
	return f.deleteWithReactionsFn(ctx, id)
}

func (f *fakePostRepository) ListAll(ctx context.Context, limit int) ([]*model.Post, error) {
	if f.listAllFn == nil {
		return nil, nil
	}
	return f.listAllFn(ctx, limit)
}

func (f *fakePostRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Post, error) {
	if f.listByUserFn == nil {
		return nil, nil
	}
	return f.listByUserFn(ctx, userID, limit)
}

func (f *fakePostRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if f.countByUserFn == nil {
		return 0, nil
	}
	return f.countByUserFn(ctx, userID)
}

// ==================== 缓存 / 令牌 ====================

type fakePageCache struct {
	getPageFn    func(ctx context.Context, handle string) ([]byte, bool, error)
	setPageFn    func(ctx context.Context, handle string, data []byte) error
	invalidateFn func(ctx context.Context, handles ...string) error
}

func (f *fakePageCache) GetPage(ctx context.Context, handle string) ([]byte, bool, error) {
	if f.getPageFn == nil {
		return nil, false, nil
	}
	return f.getPageFn(ctx, handle)
}

func (f *fakePageCache) SetPage(ctx context.Context, handle string, data []byte) error {
	if f.setPageFn == nil {
		return nil
	}
	return f.setPageFn(ctx, handle, data)
}

func (f *fakePageCache) Invalidate(ctx context.Context, handles ...string) error {
	if f.invalidateFn == nil {
		return nil
	}
	return f.invalidateFn(ctx, handles...)
}

type fakeTokenRepository struct {
	storeResetTokenFn   func(ctx context.Context, token, userID string, ttl time.Duration) error
	consumeResetTokenFn func(ctx context.Context, token string) (string, error)
	revokeTokenFn       func(ctx context.Context, jti string, ttl time.Duration) error
	isRevokedFn         func(ctx context.Context, jti string) (bool, error)
}

func (f *fakeTokenRepository) StoreResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	if f.storeResetTokenFn == nil {
		return nil
	}
	return f.storeResetTokenFn(ctx, token, userID, ttl)
}

func (f *fakeTokenRepository) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	if f.consumeResetTokenFn == nil {
		return "", nil
	}
	return f.consumeResetTokenFn(ctx, token)
}

func (f *fakeTokenRepository) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if f.revokeTokenFn == nil {
		return nil
	}
	return f.revokeTokenFn(ctx, jti, ttl)
}

func (f *fakeTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if f.isRevokedFn == nil {
		return false, nil
	}
	return f.isRevokedFn(ctx, jti)
}

// ==================== 协作者 ====================

// recordingRevalidator 记录收到的失效信号
type recordingRevalidator struct {
	mu      sync.Mutex
	handles []string
}

func (r *recordingRevalidator) RevalidateProfiles(_ context.Context, handles ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range handles {
		if h != "" {
			r.handles = append(r.handles, h)
		}
	}
}

func (r *recordingRevalidator) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.handles...)
}

type fakeMailer struct {
	sendFn func(ctx context.Context, to, subject, htmlBody string) error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.sendFn == nil {
		return nil
	}
	return f.sendFn(ctx, to, subject, htmlBody)
}
