package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

func TestDedupKey(t *testing.T) {
	id, _ := primitive.ObjectIDFromHex("65f1a2b3c4d5e6f708192a3b")
	day := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	assert.Equal(t, "view:65f1a2b3c4d5e6f708192a3b:user-1:2024-03-09", usecase.DedupKey(id, "user-1", "10.0.0.1", day))
	assert.Equal(t, "view:65f1a2b3c4d5e6f708192a3b:10.0.0.1:2024-03-09", usecase.DedupKey(id, "", "10.0.0.1", day))
	assert.Equal(t, "view:65f1a2b3c4d5e6f708192a3b:user-1:2024-03-10",
		usecase.DedupKey(id, "user-1", "", time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)))
}

func TestViewService_TrackView(t *testing.T) {
	ctx := context.Background()
	content := primitive.NewObjectID()

	t.Run("first view counts, repeat does not", func(t *testing.T) {
		contents := new(MockContentRepository)
		cache := new(MockViewDedupCache)
		metrics := &recordingMetrics{}
		service := usecase.NewViewService(contents, cache, 24*time.Hour, metrics, zap.NewNop())

		cache.On("SetIfAbsent", mock.Anything, mock.AnythingOfType("string"), 24*time.Hour).Return(true, nil).Once()
		cache.On("SetIfAbsent", mock.Anything, mock.AnythingOfType("string"), 24*time.Hour).Return(false, nil).Once()
		contents.On("IncrementViews", mock.Anything, content).Return(nil).Once()

		first, err := service.TrackView(ctx, content, "user-1", "10.0.0.1")
		require.NoError(t, err)
		second, err := service.TrackView(ctx, content, "user-1", "10.0.0.1")
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
		assert.Equal(t, []bool{true, false}, metrics.views)
		contents.AssertNumberOfCalls(t, "IncrementViews", 1)
	})

	t.Run("anonymous viewer without address is skipped", func(t *testing.T) {
		contents := new(MockContentRepository)
		cache := new(MockViewDedupCache)
		service := usecase.NewViewService(contents, cache, 0, nil, zap.NewNop())

		counted, err := service.TrackView(ctx, content, "", "")

		require.NoError(t, err)
		assert.False(t, counted)
		cache.AssertNotCalled(t, "SetIfAbsent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache outage skips counting", func(t *testing.T) {
		contents := new(MockContentRepository)
		cache := new(MockViewDedupCache)
		cache.On("SetIfAbsent", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
		service := usecase.NewViewService(contents, cache, time.Hour, nil, zap.NewNop())

		counted, err := service.TrackView(ctx, content, "user-1", "")

		require.NoError(t, err)
		assert.False(t, counted)
		contents.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
	})

	t.Run("increment failure surfaces", func(t *testing.T) {
		contents := new(MockContentRepository)
		cache := new(MockViewDedupCache)
		cache.On("SetIfAbsent", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		contents.On("IncrementViews", mock.Anything, content).Return(errors.New("write conflict"))
		service := usecase.NewViewService(contents, cache, time.Hour, nil, zap.NewNop())

		counted, err := service.TrackView(ctx, content, "user-1", "")

		assert.Error(t, err)
		assert.False(t, counted)
	})
}

func TestViewService_ResetViews(t *testing.T) {
	ctx := context.Background()

	t.Run("valid period", func(t *testing.T) {
		contents := new(MockContentRepository)
		contents.On("ResetViews", mock.Anything, repository.ViewsWeekly).Return(int64(12), nil)
		service := usecase.NewViewService(contents, new(MockViewDedupCache), time.Hour, nil, zap.NewNop())

		n, err := service.ResetViews(ctx, repository.ViewsWeekly)

		require.NoError(t, err)
		assert.Equal(t, int64(12), n)
	})

	t.Run("unknown period", func(t *testing.T) {
		contents := new(MockContentRepository)
		service := usecase.NewViewService(contents, new(MockViewDedupCache), time.Hour, nil, zap.NewNop())

		_, err := service.ResetViews(ctx, repository.ViewPeriod("total"))

		assert.ErrorIs(t, err, domainErrors.ErrInvalidPeriod)
		contents.AssertNotCalled(t, "ResetViews", mock.Anything, mock.Anything)
	})
}
