package usecase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

// DevicePolicy selects how a content read treats a device that is not the registered one.
type DevicePolicy string

const (
	// DevicePolicyStrict denies any device other than the registered one.
	DevicePolicyStrict DevicePolicy = "strict"
	// DevicePolicyMigrate moves the session to the requesting device unless another user owns it.
	DevicePolicyMigrate DevicePolicy = "migrate"
)

// ContentAccessService serves content reads. Metadata is always returned; the playable URL only
// when the device is authorized, the user is entitled and the content is offered in the country.
type ContentAccessService struct {
	contents repository.ContentRepository
	pricing  *PricingService
	devices  *DeviceService
	access   *EntitlementService
	views    *ViewService
	logger   *zap.Logger
}

func NewContentAccessService(
	contents repository.ContentRepository,
	pricing *PricingService,
	devices *DeviceService,
	access *EntitlementService,
	views *ViewService,
	logger *zap.Logger,
) *ContentAccessService {
	return &ContentAccessService{
		contents: contents,
		pricing:  pricing,
		devices:  devices,
		access:   access,
		views:    views,
		logger:   logger,
	}
}

type ReadInput struct {
	UserID    string
	DeviceID  string
	ContentID entity.Identifier
	Country   string
	IP        string
	Policy    DevicePolicy
}

type ContentView struct {
	Content      model.Content         `json:"content"`
	PlayURL      *string               `json:"play_url"`
	Availability entity.Availability   `json:"availability"`
	Entitled     bool                  `json:"entitled"`
	Device       entity.DeviceDecision `json:"device"`
	// Denials lists every reason the URL was withheld.
	Denials []string `json:"denials,omitempty"`
	Counted bool     `json:"view_counted"`
}

// ReadContent evaluates all three gates and redacts the playable URL when any of them denies.
// Denials are part of the result, not errors.
func (s *ContentAccessService) ReadContent(ctx context.Context, in ReadInput) (*ContentView, error) {
	log := logger.For(ctx, s.logger).With(zap.String("content_id", in.ContentID.String()))

	content, err := s.contents.FindByIdentifier(ctx, in.ContentID)
	if err != nil {
		return nil, err
	}

	view := &ContentView{}
	view.Availability = s.pricing.ResolveAvailability(ctx, content, in.Country)
	if !view.Availability.Available {
		view.Denials = append(view.Denials, entity.ReasonCountryBlocked)
	}

	switch in.Policy {
	case DevicePolicyMigrate:
		view.Device, err = s.devices.AuthorizeOrMigrate(ctx, in.UserID, in.DeviceID)
	default:
		view.Device, err = s.devices.ValidateDeviceAccess(ctx, in.UserID, in.DeviceID)
	}
	if err != nil {
		return nil, err
	}
	if !view.Device.Valid {
		view.Denials = append(view.Denials, view.Device.Reason)
	}

	view.Entitled, err = s.entitled(ctx, content, in.UserID)
	if err != nil {
		return nil, err
	}
	if !view.Entitled {
		view.Denials = append(view.Denials, entity.ReasonNotEntitled)
	}

	view.Content = *content
	view.Content.PlayURL = ""
	if len(view.Denials) == 0 && content.PlayURL != "" {
		url := content.PlayURL
		view.PlayURL = &url
	} else if len(view.Denials) > 0 {
		log.Debug("Playable URL withheld", zap.Strings("denials", view.Denials))
	}

	// only reads that hand out a playable URL count as views
	if view.PlayURL == nil {
		return view, nil
	}
	view.Counted, err = s.views.TrackView(ctx, content.ID, in.UserID, in.IP)
	if err != nil {
		log.Warn("View not counted", zap.Error(err))
	}
	return view, nil
}

func (s *ContentAccessService) entitled(ctx context.Context, content *model.Content, userID string) (bool, error) {
	if content.IsFree {
		return true, nil
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, nil
	}
	ok, err := s.access.HasLiveEntitlement(ctx, uid, content.Channel, entity.ResourceFor(content))
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check entitlement")
	}
	return ok, nil
}

// ListChannelContents lists a channel's catalog as offered in country. Playable URLs are never
// part of a listing.
func (s *ContentAccessService) ListChannelContents(ctx context.Context, channel primitive.ObjectID, country string, limit int64) (*FilterResult, error) {
	contents, err := s.contents.ListByChannel(ctx, channel, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list contents")
	}

	result := s.pricing.FilterAvailable(ctx, contents, country)
	for i := range result.Items {
		result.Items[i].Content.PlayURL = ""
	}
	return result, nil
}
