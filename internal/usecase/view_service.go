package usecase

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

// ViewService counts content views, at most once per viewer per calendar day.
type ViewService struct {
	contents repository.ContentRepository
	dedup    repository.ViewDedupCache
	ttl      time.Duration
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewViewService(contents repository.ContentRepository, dedup repository.ViewDedupCache, ttl time.Duration, metrics Metrics, logger *zap.Logger) *ViewService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ViewService{
		contents: contents,
		dedup:    dedup,
		ttl:      ttl,
		metrics:  metricsOrNop(metrics),
		logger:   logger,
		now:      time.Now,
	}
}

// DedupKey identifies one viewer's views of a content on one UTC calendar day.
// The viewer id wins over the IP address.
func DedupKey(contentID primitive.ObjectID, viewerID, ip string, day time.Time) string {
	who := viewerID
	if who == "" {
		who = ip
	}
	return fmt.Sprintf("view:%s:%s:%s", contentID.Hex(), who, day.UTC().Format("2006-01-02"))
}

// TrackView reports whether this call incremented the counters. Counting is best effort:
// cache failures skip the increment rather than fail the read that triggered it.
func (s *ViewService) TrackView(ctx context.Context, contentID primitive.ObjectID, viewerID, ip string) (bool, error) {
	if viewerID == "" && ip == "" {
		return false, nil
	}
	log := logger.For(ctx, s.logger).With(zap.String("content_id", contentID.Hex()))

	key := DedupKey(contentID, viewerID, ip, s.now())
	fresh, err := s.dedup.SetIfAbsent(ctx, key, s.ttl)
	if err != nil {
		log.Warn("View dedup cache unavailable, view not counted", zap.Error(err))
		s.metrics.ObserveView(false)
		return false, nil
	}
	if !fresh {
		s.metrics.ObserveView(false)
		return false, nil
	}

	if err := s.contents.IncrementViews(ctx, contentID); err != nil {
		log.Error("Failed to increment view counters", zap.Error(err))
		return false, apperrors.Wrap(err, "failed to increment views")
	}
	s.metrics.ObserveView(true)
	return true, nil
}

// ResetViews zeroes one counter across all content.
func (s *ViewService) ResetViews(ctx context.Context, period repository.ViewPeriod) (int64, error) {
	switch period {
	case repository.ViewsDaily, repository.ViewsWeekly, repository.ViewsMonthly:
	default:
		return 0, domainErrors.ErrInvalidPeriod
	}

	n, err := s.contents.ResetViews(ctx, period)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to reset views")
	}
	logger.For(ctx, s.logger).Info("View counters reset",
		zap.String("period", string(period)),
		zap.Int64("modified", n))
	return n, nil
}
