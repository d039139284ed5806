// Package catalog loads the operator-maintained plan and country catalog and writes it to the
// document store.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

type File struct {
	Countries []CountryEntry `yaml:"countries"`
	Plans     []PlanEntry    `yaml:"plans"`
}

type CountryEntry struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

type PlanEntry struct {
	ID           string  `yaml:"id"`
	Channel      string  `yaml:"channel"`
	Name         string  `yaml:"name"`
	Price        float64 `yaml:"price"`
	Currency     string  `yaml:"currency"`
	BillingCycle string  `yaml:"billing_cycle"`
	CustomDays   int     `yaml:"custom_days"`
	ForMovies    *bool   `yaml:"for_movies"`
	ForSeries    *bool   `yaml:"for_series"`
	Active       *bool   `yaml:"active"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i, c := range f.Countries {
		if len(c.Code) != 2 {
			return nil, fmt.Errorf("countries[%d]: code must be two letters, got %q", i, c.Code)
		}
		if c.Currency != "" && len(c.Currency) != 3 {
			return nil, fmt.Errorf("countries[%d]: currency must be three letters", i)
		}
	}

	for i, p := range f.Plans {
		if _, err := p.toModel(); err != nil {
			return nil, fmt.Errorf("plans[%d] %q: %w", i, p.Name, err)
		}
	}
	return &f, nil
}

func (p PlanEntry) toModel() (*model.Plan, error) {
	channel, err := primitive.ObjectIDFromHex(p.Channel)
	if err != nil {
		return nil, fmt.Errorf("invalid channel id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if p.Price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	plan := &model.Plan{
		Channel:      channel,
		Name:         p.Name,
		Price:        p.Price,
		Currency:     strings.ToUpper(p.Currency),
		BillingCycle: model.BillingCycle(p.BillingCycle),
		CustomDays:   p.CustomDays,
		ForMovies:    p.ForMovies,
		ForSeries:    p.ForSeries,
		Status:       1,
	}
	if p.Active != nil && !*p.Active {
		plan.Status = 0
	}
	if p.ID != "" {
		if plan.ID, err = primitive.ObjectIDFromHex(p.ID); err != nil {
			return nil, fmt.Errorf("invalid plan id")
		}
	}

	switch plan.BillingCycle {
	case model.BillingMonthly, model.BillingQuarterly, model.BillingYearly:
	case model.BillingCustom:
		if plan.CustomDays <= 0 {
			return nil, fmt.Errorf("custom billing needs custom_days")
		}
	default:
		return nil, fmt.Errorf("unknown billing_cycle %q", p.BillingCycle)
	}
	return plan, nil
}

// Result counts what Apply wrote.
type Result struct {
	Countries int
	Plans     int
}

// Apply upserts countries first so plans can be priced against them. It stops at the first
// failed write.
func Apply(ctx context.Context, f *File, plans repository.PlanRepository, countries repository.CountryRepository, log *zap.Logger) (Result, error) {
	var res Result

	for _, c := range f.Countries {
		country := &model.Country{Code: c.Code, Name: c.Name, Currency: c.Currency}
		if err := countries.Upsert(ctx, country); err != nil {
			return res, fmt.Errorf("country %s: %w", c.Code, err)
		}
		res.Countries++
	}

	for _, p := range f.Plans {
		plan, err := p.toModel()
		if err != nil {
			return res, fmt.Errorf("plan %q: %w", p.Name, err)
		}
		if err := plans.Upsert(ctx, plan); err != nil {
			return res, fmt.Errorf("plan %q: %w", p.Name, err)
		}
		log.Debug("Plan synced", zap.String("name", plan.Name), zap.String("id", plan.ID.Hex()))
		res.Plans++
	}
	return res, nil
}
