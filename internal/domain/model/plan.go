package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BillingCycle string

const (
	BillingMonthly   BillingCycle = "monthly"
	BillingQuarterly BillingCycle = "quarterly"
	BillingYearly    BillingCycle = "yearly"
	BillingCustom    BillingCycle = "custom"
)

const day = 24 * time.Hour

// Plan is an admin-defined bundle entitling its holder to a channel's catalog.
type Plan struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Channel      primitive.ObjectID `bson:"channel" json:"channel_id"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Currency     string             `bson:"currency" json:"currency"`
	BillingCycle BillingCycle       `bson:"billing_cycle" json:"billing_cycle"`
	CustomDays   int                `bson:"custom_days,omitempty" json:"custom_days,omitempty"`
	// Nil category flags come from plans created before the flags existed and match everything.
	ForMovies *bool     `bson:"for_movies,omitempty" json:"for_movies,omitempty"`
	ForSeries *bool     `bson:"for_series,omitempty" json:"for_series,omitempty"`
	Status    int       `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Duration returns the validity granted by one billing cycle, or 0 when it is unknown.
func (p *Plan) Duration() time.Duration {
	switch p.BillingCycle {
	case BillingMonthly:
		return 30 * day
	case BillingQuarterly:
		return 90 * day
	case BillingYearly:
		return 365 * day
	case BillingCustom:
		if p.CustomDays > 0 {
			return time.Duration(p.CustomDays) * day
		}
	}
	return 0
}

// AppliesTo reports whether the plan covers content of the given type.
// Live content is covered by any plan.
func (p *Plan) AppliesTo(t ContentType) bool {
	switch t {
	case ContentMovie:
		return p.ForMovies == nil || *p.ForMovies
	case ContentSeries, ContentEpisode:
		return p.ForSeries == nil || *p.ForSeries
	default:
		return true
	}
}
