package usecase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
)

type purchaseRequest struct {
	PlanID    string
	VideoID   string
	ChannelID primitive.ObjectID
	Country   string
	// Grant skips the country and free-content checks that only apply to paid orders.
	Grant bool
}

// purchase is a resolved plan or video target with its server-side price.
type purchase struct {
	plan     *model.Plan
	content  *model.Content
	resource entity.Resource
	channel  primitive.ObjectID
	price    float64
	currency string
	duration time.Duration
}

func (p *purchase) applyScope(e *model.Entitlement) {
	if p.plan != nil {
		id := p.plan.ID
		e.Plan = &id
		return
	}
	id := p.content.ID
	e.Video = &id
}

func resolvePurchase(ctx context.Context, plans repository.PlanRepository, contents repository.ContentRepository, pricing *PricingService, req purchaseRequest) (*purchase, error) {
	if (req.PlanID == "") == (req.VideoID == "") {
		return nil, domainErrors.ErrInvalidScope
	}

	if req.PlanID != "" {
		id, err := primitive.ObjectIDFromHex(req.PlanID)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid plan_id", err)
		}
		plan, err := plans.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !req.ChannelID.IsZero() && plan.Channel != req.ChannelID {
			return nil, domainErrors.ErrPlanNotFound
		}
		duration := plan.Duration()
		if duration <= 0 {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "plan has no billing duration", nil)
		}
		return &purchase{
			plan:     plan,
			resource: entity.PlanResource(plan.ID),
			channel:  plan.Channel,
			price:    plan.Price,
			currency: plan.Currency,
			duration: duration,
		}, nil
	}

	id, err := entity.ParseIdentifier(req.VideoID)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid video_id", err)
	}
	content, err := contents.FindByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}
	if content.Type.PlanOnly() {
		return nil, domainErrors.ErrSeriesRequiresPlan
	}
	if !req.ChannelID.IsZero() && content.Channel != req.ChannelID {
		return nil, domainErrors.ErrContentNotFound
	}

	p := &purchase{
		content:  content,
		resource: entity.ResourceFor(content),
		channel:  content.Channel,
		price:    content.Price,
		duration: DefaultVideoValidity,
	}
	if content.ValidityHours > 0 {
		p.duration = time.Duration(content.ValidityHours) * time.Hour
	}

	if req.Grant {
		p.currency = pricing.defaultCurrency
		return p, nil
	}
	if content.IsFree {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "content is free to watch", nil)
	}

	availability := pricing.ResolveAvailability(ctx, content, req.Country)
	if !availability.Available {
		return nil, domainErrors.NewDeniedError(entity.ReasonCountryBlocked, availability.Reason)
	}
	p.price = availability.Price
	p.currency = availability.Currency
	return p, nil
}
