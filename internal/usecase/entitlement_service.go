package usecase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

// EntitlementService answers "does this user hold live access to this resource".
type EntitlementService struct {
	entitlements repository.EntitlementRepository
	plans        repository.PlanRepository
	contents     repository.ContentRepository
	logger       *zap.Logger
}

func NewEntitlementService(
	entitlements repository.EntitlementRepository,
	plans repository.PlanRepository,
	contents repository.ContentRepository,
	logger *zap.Logger,
) *EntitlementService {
	return &EntitlementService{
		entitlements: entitlements,
		plans:        plans,
		contents:     contents,
		logger:       logger,
	}
}

// HasLiveEntitlement reports whether user holds live access to res on channel.
func (s *EntitlementService) HasLiveEntitlement(ctx context.Context, user, channel primitive.ObjectID, res entity.Resource) (bool, error) {
	e, err := s.FindLiveEntitlement(ctx, user, channel, res)
	return e != nil, err
}

// FindLiveEntitlement returns the entitlement granting access to res, or nil.
//
// Series, episodes and live channels are plan-only: a per-video entitlement never unlocks them.
// Movies are unlocked by a per-video entitlement or by a plan flagged for movies.
func (s *EntitlementService) FindLiveEntitlement(ctx context.Context, user, channel primitive.ObjectID, res entity.Resource) (*model.Entitlement, error) {
	now := time.Now().UnixMilli()
	base := repository.LiveQuery{User: user, Channel: channel, Now: now}

	switch res.Kind {
	case entity.ResourcePlan:
		if !res.ID.IsZero() {
			q := base
			q.Plan = &res.ID
			return s.firstLive(ctx, q)
		}
		return s.findPlanScoped(ctx, base, res.Category)

	case entity.ResourceVideo:
		category := res.Category
		if category == "" {
			category = model.ContentMovie
		}
		if category.PlanOnly() {
			return s.findPlanScoped(ctx, base, category)
		}

		q := base
		q.Video = &res.ID
		e, err := s.firstLive(ctx, q)
		if err != nil || e != nil {
			return e, err
		}
		return s.findPlanScoped(ctx, base, category)

	default:
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "unknown resource type", nil)
	}
}

func (s *EntitlementService) firstLive(ctx context.Context, q repository.LiveQuery) (*model.Entitlement, error) {
	found, err := s.entitlements.FindLive(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query entitlements")
	}
	for i := range found {
		if found[i].IsLive(q.Now) {
			return &found[i], nil
		}
	}
	return nil, nil
}

func (s *EntitlementService) findPlanScoped(ctx context.Context, q repository.LiveQuery, category model.ContentType) (*model.Entitlement, error) {
	q.AnyPlan = true
	found, err := s.entitlements.FindLive(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query plan entitlements")
	}
	if len(found) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, 0, len(found))
	for i := range found {
		if found[i].IsPlanScoped() {
			ids = append(ids, *found[i].Plan)
		}
	}
	plans, err := s.plans.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load plans")
	}

	for i := range found {
		e := &found[i]
		if !e.IsPlanScoped() || !e.IsLive(q.Now) {
			continue
		}
		plan, ok := plans[*e.Plan]
		if !ok {
			logger.For(ctx, s.logger).Warn("Entitlement references a missing plan",
				zap.String("entitlement_id", e.ID.Hex()),
				zap.String("plan_id", e.Plan.Hex()))
			continue
		}
		if plan.AppliesTo(category) {
			return e, nil
		}
	}
	return nil, nil
}

// CheckInput identifies what an entitlement check is about. VideoID takes precedence over PlanID;
// with neither, Category selects a plan-wide check.
type CheckInput struct {
	UserID    primitive.ObjectID
	ChannelID primitive.ObjectID
	VideoID   string
	PlanID    string
	Category  model.ContentType
}

type CheckResult struct {
	Entitled    bool               `json:"entitled"`
	Entitlement *model.Entitlement `json:"entitlement,omitempty"`
}

// Check resolves the request to a resource and looks up the live entitlement for it.
func (s *EntitlementService) Check(ctx context.Context, in CheckInput) (*CheckResult, error) {
	var res entity.Resource
	switch {
	case in.VideoID != "":
		id, err := entity.ParseIdentifier(in.VideoID)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid video_id", err)
		}
		content, err := s.contents.FindByIdentifier(ctx, id)
		if err != nil {
			return nil, err
		}
		if !in.ChannelID.IsZero() && in.ChannelID != content.Channel {
			return nil, domainErrors.ErrContentNotFound
		}
		if content.IsFree {
			return &CheckResult{Entitled: true}, nil
		}
		// content is only ever unlocked on its own channel
		in.ChannelID = content.Channel
		res = entity.ResourceFor(content)
	case in.PlanID != "":
		id, err := primitive.ObjectIDFromHex(in.PlanID)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid plan_id", err)
		}
		res = entity.PlanResource(id)
	default:
		category := in.Category
		if category == "" {
			category = model.ContentSeries
		}
		res = entity.PlanScope(category)
	}

	e, err := s.FindLiveEntitlement(ctx, in.UserID, in.ChannelID, res)
	if err != nil {
		return nil, err
	}
	return &CheckResult{Entitled: e != nil, Entitlement: e}, nil
}
