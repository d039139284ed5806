package http

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

// The handlers depend on these narrow views of the usecase services.

type SettlementUsecase interface {
	CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*usecase.OrderResult, error)
	ConfirmPayment(ctx context.Context, in usecase.ConfirmInput) (*model.Entitlement, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*usecase.WebhookResult, error)
	Refund(ctx context.Context, in usecase.RefundInput) (*model.Entitlement, error)
}

type EntitlementChecker interface {
	Check(ctx context.Context, in usecase.CheckInput) (*usecase.CheckResult, error)
}

type GrantUsecase interface {
	Grant(ctx context.Context, in usecase.GrantInput) (*usecase.GrantResult, error)
	Remove(ctx context.Context, id primitive.ObjectID, removedBy string) error
}

type ContentUsecase interface {
	ReadContent(ctx context.Context, in usecase.ReadInput) (*usecase.ContentView, error)
	ListChannelContents(ctx context.Context, channel primitive.ObjectID, country string, limit int64) (*usecase.FilterResult, error)
}

type DeviceUsecase interface {
	ValidateDeviceAccess(ctx context.Context, userID, deviceID string) (entity.DeviceDecision, error)
	UpdateUserDevice(ctx context.Context, userID, newDeviceID string) error
}

type ViewResetter interface {
	ResetViews(ctx context.Context, period repository.ViewPeriod) (int64, error)
}

// CountryLookup resolves a client IP to a country code.
type CountryLookup interface {
	CountryCode(ip string) (string, error)
}
