package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"PostServer/consts"
	"PostServer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

var (
	alice = &model.Profile{Id: "u-alice", Username: "alice"}
	bob   = &model.Profile{Id: "u-bob", Username: "bob"}
	carol = &model.Profile{Id: "u-carol", Username: "carol"}
)

func newGraphService() (IFollowService, *memFollowGraph, *recordingRevalidator) {
	graph := newMemFollowGraph()
	reval := &recordingRevalidator{}
	svc := NewFollowService(graph.repo(), profilesByID(alice, bob, carol), reval)
	return svc, graph, reval
}

func TestFollowServiceFollow(t *testing.T) {
	initServiceTestLogger()
	ctx := context.Background()

	tests := []struct {
		name         string
		actor        string
		target       string
		wantGRPCCode codes.Code
		wantBizCode  int
	}{
		{name: "unauthenticated", actor: "", target: bob.Id, wantGRPCCode: codes.Unauthenticated, wantBizCode: consts.CodeUnauthorized},
		{name: "empty_target", actor: alice.Id, target: "", wantGRPCCode: codes.InvalidArgument, wantBizCode: consts.CodeParamError},
		{name: "self_follow", actor: alice.Id, target: alice.Id, wantGRPCCode: codes.InvalidArgument, wantBizCode: consts.CodeSelfFollow},
		{name: "unknown_target", actor: alice.Id, target: "u-ghost", wantGRPCCode: codes.NotFound, wantBizCode: consts.CodeTargetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, graph, _ := newGraphService()
			_, err := svc.Follow(ctx, tt.actor, tt.target)
			requireStatusBizCode(t, err, tt.wantGRPCCode, tt.wantBizCode)
			assert.Zero(t, graph.count(func([2]string) bool { return true }))
		})
	}

	t.Run("follow_then_unfollow", func(t *testing.T) {
		svc, _, reval := newGraphService()

		res, err := svc.Follow(ctx, alice.Id, bob.Id)
		require.NoError(t, err)
		assert.True(t, res.Following)
		assert.False(t, res.Mutual)
		assert.True(t, svc.IsFollowing(ctx, alice.Id, bob.Id))
		assert.False(t, svc.IsFollowing(ctx, bob.Id, alice.Id))
		assert.ElementsMatch(t, []string{"alice", "bob"}, reval.got())

		require.NoError(t, svc.Unfollow(ctx, alice.Id, bob.Id))
		assert.False(t, svc.IsFollowing(ctx, alice.Id, bob.Id))
		assert.Len(t, reval.got(), 4)
	})

	t.Run("duplicate_follow_is_idempotent", func(t *testing.T) {
		svc, graph, _ := newGraphService()
		_, err := svc.Follow(ctx, alice.Id, bob.Id)
		require.NoError(t, err)
		_, err = svc.Follow(ctx, alice.Id, bob.Id)
		require.NoError(t, err)
		assert.EqualValues(t, 1, graph.count(func([2]string) bool { return true }))
	})

	t.Run("follow_back_reports_mutual", func(t *testing.T) {
		svc, _, _ := newGraphService()
		_, err := svc.Follow(ctx, bob.Id, alice.Id)
		require.NoError(t, err)

		res, err := svc.Follow(ctx, alice.Id, bob.Id)
		require.NoError(t, err)
		assert.True(t, res.Mutual)
		assert.True(t, svc.IsMutual(ctx, alice.Id, bob.Id))
		assert.True(t, svc.IsMutual(ctx, bob.Id, alice.Id))
	})

	t.Run("storage_error", func(t *testing.T) {
		repo := &fakeFollowRepository{
			createFn: func(context.Context, string, string) error { return errors.New("insert failed") },
		}
		svc := NewFollowService(repo, profilesByID(alice, bob), &recordingRevalidator{})
		_, err := svc.Follow(ctx, alice.Id, bob.Id)
		requireStatusBizCode(t, err, codes.Internal, consts.CodeStorageError)
	})
}

func TestFollowServiceUnfollow(t *testing.T) {
	initServiceTestLogger()
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		svc, _, _ := newGraphService()
		err := svc.Unfollow(ctx, "", bob.Id)
		requireStatusBizCode(t, err, codes.Unauthenticated, consts.CodeUnauthorized)
	})

	t.Run("absent_edge_is_noop", func(t *testing.T) {
		svc, _, _ := newGraphService()
		require.NoError(t, svc.Unfollow(ctx, alice.Id, bob.Id))
	})

	t.Run("storage_error", func(t *testing.T) {
		repo := &fakeFollowRepository{
			deleteFn: func(context.Context, string, string) error { return errors.New("delete failed") },
		}
		svc := NewFollowService(repo, profilesByID(alice, bob), &recordingRevalidator{})
		err := svc.Unfollow(ctx, alice.Id, bob.Id)
		requireStatusBizCode(t, err, codes.Internal, consts.CodeStorageError)
	})
}

func TestFollowServiceQueries(t *testing.T) {
	initServiceTestLogger()
	ctx := context.Background()

	t.Run("stats_count_edges", func(t *testing.T) {
		svc, _, _ := newGraphService()
		_, _ = svc.Follow(ctx, alice.Id, bob.Id)
		_, _ = svc.Follow(ctx, alice.Id, carol.Id)
		_, _ = svc.Follow(ctx, carol.Id, alice.Id)

		stats := svc.FollowStats(ctx, alice.Id)
		assert.EqualValues(t, 2, stats.FollowingCount)
		assert.EqualValues(t, 1, stats.FollowerCount)
		assert.False(t, stats.Degraded)

		stats = svc.FollowStats(ctx, bob.Id)
		assert.EqualValues(t, 0, stats.FollowingCount)
		assert.EqualValues(t, 1, stats.FollowerCount)
	})

	t.Run("stats_default_to_zero_on_error", func(t *testing.T) {
		repo := &fakeFollowRepository{
			countFollowingFn: func(context.Context, string) (int64, error) { return 7, errors.New("timeout") },
			countFollowersFn: func(context.Context, string) (int64, error) { return 3, nil },
		}
		stats := NewFollowService(repo, profilesByID(), nil).FollowStats(ctx, alice.Id)
		assert.EqualValues(t, 0, stats.FollowingCount)
		assert.EqualValues(t, 3, stats.FollowerCount)
		assert.True(t, stats.Degraded)
	})

	t.Run("unauthenticated_viewer_sees_false", func(t *testing.T) {
		svc, _, _ := newGraphService()
		_, _ = svc.Follow(ctx, bob.Id, alice.Id)
		assert.False(t, svc.IsFollowing(ctx, "", alice.Id))
		assert.False(t, svc.IsFollowedBy(ctx, "", bob.Id))
		assert.False(t, svc.IsMutual(ctx, "", bob.Id))
		assert.Equal(t, false, svc.FollowState(ctx, "", bob.Id).FollowedBy)
	})

	t.Run("self_is_never_mutual", func(t *testing.T) {
		svc, _, _ := newGraphService()
		assert.False(t, svc.IsMutual(ctx, alice.Id, alice.Id))
	})

	t.Run("follow_state", func(t *testing.T) {
		svc, _, _ := newGraphService()
		_, _ = svc.Follow(ctx, bob.Id, alice.Id)

		state := svc.FollowState(ctx, alice.Id, bob.Id)
		assert.False(t, state.Following)
		assert.True(t, state.FollowedBy)
		assert.False(t, state.Mutual)

		_, _ = svc.Follow(ctx, alice.Id, bob.Id)
		state = svc.FollowState(ctx, alice.Id, bob.Id)
		assert.True(t, state.Mutual)
		// 重复计算结果不变
		assert.Equal(t, state, svc.FollowState(ctx, alice.Id, bob.Id))
	})

	t.Run("exists_error_is_false", func(t *testing.T) {
		repo := &fakeFollowRepository{
			existsFn: func(context.Context, string, string) (bool, error) { return true, errors.New("boom") },
		}
		svc := NewFollowService(repo, profilesByID(), nil)
		assert.False(t, svc.IsFollowing(ctx, alice.Id, bob.Id))
	})
}

func TestFollowServiceLists(t *testing.T) {
	initServiceTestLogger()
	ctx := context.Background()
	now := time.Now()

	edges := []*model.Follow{
		{Id: 3, FollowerId: alice.Id, FollowingId: carol.Id, CreatedAt: now},
		{Id: 2, FollowerId: alice.Id, FollowingId: "u-deleted", CreatedAt: now.Add(-time.Minute)},
		{Id: 1, FollowerId: alice.Id, FollowingId: bob.Id, CreatedAt: now.Add(-time.Hour)},
	}

	t.Run("following_drops_orphans_and_keeps_order", func(t *testing.T) {
		repo := &fakeFollowRepository{
			listFollowingFn: func(_ context.Context, id string) ([]*model.Follow, error) {
				require.Equal(t, alice.Id, id)
				return edges, nil
			},
		}
		items, err := NewFollowService(repo, profilesByID(alice, bob, carol), nil).FollowingList(ctx, alice.Id)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "carol", items[0].Profile.Handle)
		assert.Equal(t, "bob", items[1].Profile.Handle)
	})

	t.Run("followers_join_follower_side", func(t *testing.T) {
		repo := &fakeFollowRepository{
			listFollowersFn: func(context.Context, string) ([]*model.Follow, error) {
				return []*model.Follow{{FollowerId: bob.Id, FollowingId: alice.Id, CreatedAt: now}}, nil
			},
		}
		items, err := NewFollowService(repo, profilesByID(alice, bob), nil).FollowerList(ctx, alice.Id)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "bob", items[0].Profile.Handle)
		assert.NotEmpty(t, items[0].FollowedAt)
	})

	t.Run("empty_list_is_not_nil", func(t *testing.T) {
		svc, _, _ := newGraphService()
		items, err := svc.FollowingList(ctx, alice.Id)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc, _, _ := newGraphService()
		_, err := svc.FollowingList(ctx, "")
		requireStatusBizCode(t, err, codes.Unauthenticated, consts.CodeUnauthorized)
	})

	t.Run("list_error", func(t *testing.T) {
		repo := &fakeFollowRepository{
			listFollowingFn: func(context.Context, string) ([]*model.Follow, error) { return nil, errors.New("boom") },
		}
		_, err := NewFollowService(repo, profilesByID(), nil).FollowingList(ctx, alice.Id)
		requireStatusBizCode(t, err, codes.Internal, consts.CodeStorageError)
	})
}

func TestCacheRevalidator(t *testing.T) {
	initServiceTestLogger()
	var got []string
	cache := &fakePageCache{
		invalidateFn: func(_ context.Context, handles ...string) error {
			got = append(got, handles...)
			return errors.New("redis down")
		},
	}
	NewCacheRevalidator(cache).RevalidateProfiles(context.Background(), "alice", "bob")
	assert.Equal(t, []string{"alice", "bob"}, got)
}
