package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContentType string

const (
	ContentMovie   ContentType = "movie"
	ContentSeries  ContentType = "series"
	ContentEpisode ContentType = "episode"
	ContentLive    ContentType = "live"
)

// PlanOnly reports whether the content type can only be unlocked through a plan.
func (t ContentType) PlanOnly() bool {
	return t == ContentSeries || t == ContentEpisode || t == ContentLive
}

// Content is a playable catalog item with its pricing descriptor and view counters.
type Content struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LegacyID int64              `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	Channel  primitive.ObjectID `bson:"channel" json:"channel_id"`
	Title    string             `bson:"title" json:"title"`
	Type     ContentType        `bson:"type" json:"type"`
	PlayURL  string             `bson:"play_url,omitempty" json:"play_url,omitempty"`
	Poster   string             `bson:"poster,omitempty" json:"poster,omitempty"`

	Price          float64              `bson:"price" json:"price"`
	IsFree         bool                 `bson:"is_free" json:"is_free"`
	UseGlobalPrice bool                 `bson:"use_global_price" json:"use_global_price"`
	CountryPrices  []CountryPrice       `bson:"country_prices,omitempty" json:"country_prices,omitempty"`
	Countries      []primitive.ObjectID `bson:"countries,omitempty" json:"countries,omitempty"`
	ValidityHours  int                  `bson:"validity_hours,omitempty" json:"validity_hours,omitempty"`

	Views     ViewCounters `bson:"views" json:"views"`
	Status    int          `bson:"status" json:"status"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at" json:"updated_at"`
}

// CountryPrice overrides the base price for one country code.
type CountryPrice struct {
	Country string  `bson:"country" json:"country"`
	Price   float64 `bson:"price" json:"price"`
}

type ViewCounters struct {
	Today   int64 `bson:"today" json:"today"`
	Weekly  int64 `bson:"weekly" json:"weekly"`
	Monthly int64 `bson:"monthly" json:"monthly"`
	Total   int64 `bson:"total" json:"total"`
}

// Country maps an ISO code to its billing currency.
type Country struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code     string             `bson:"code" json:"code"`
	Name     string             `bson:"name" json:"name"`
	Currency string             `bson:"currency" json:"currency"`
}
