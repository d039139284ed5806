package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	// FindOtherDeviceHolder returns the user other than exclude whose live device is deviceID, or nil.
	FindOtherDeviceHolder(ctx context.Context, deviceID string, exclude primitive.ObjectID) (*model.User, error)
	// SetDevice sets the device and last login together. It returns ErrDeviceClaimed when the
	// unique device index rejects the write.
	SetDevice(ctx context.Context, userID primitive.ObjectID, deviceID string, at time.Time) error
}

// ViewPeriod names a resettable view counter.
type ViewPeriod string

const (
	ViewsDaily   ViewPeriod = "daily"
	ViewsWeekly  ViewPeriod = "weekly"
	ViewsMonthly ViewPeriod = "monthly"
)

type ContentRepository interface {
	FindByIdentifier(ctx context.Context, id entity.Identifier) (*model.Content, error)
	ListByChannel(ctx context.Context, channel primitive.ObjectID, limit int64) ([]model.Content, error)
	// IncrementViews adds one to every counter in a single update.
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	ResetViews(ctx context.Context, period ViewPeriod) (int64, error)
}

type PlanRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Plan, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Plan, error)
	Upsert(ctx context.Context, plan *model.Plan) error
}

type CountryRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Country, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Country, error)
	Upsert(ctx context.Context, country *model.Country) error
}

// AuditLogFilter narrows a ledger listing.
type AuditLogFilter struct {
	OrderID       string
	EntitlementID string
	Limit         int
}

type AuditLogRepository interface {
	// Record appends an entry. Entries are never updated.
	Record(ctx context.Context, entry *model.AuditLog) error
	// List returns entries newest first.
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}

// ViewDedupCache remembers which viewers were already counted. SetIfAbsent stores key with ttl
// and reports whether it was newly stored.
type ViewDedupCache interface {
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
