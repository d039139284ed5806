package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

// PricingService decides whether content is offered in a country and at what price.
type PricingService struct {
	countries       repository.CountryRepository
	defaultCurrency string
	logger          *zap.Logger
}

func NewPricingService(countries repository.CountryRepository, defaultCurrency string, logger *zap.Logger) *PricingService {
	return &PricingService{
		countries:       countries,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// PricedContent is one content item annotated with its resolved price.
type PricedContent struct {
	Content      model.Content       `json:"content"`
	Availability entity.Availability `json:"availability"`
}

// FilterResult is the batch resolver's output.
type FilterResult struct {
	Items         []PricedContent `json:"items"`
	OriginalCount int             `json:"original_count"`
	FilteredCount int             `json:"filtered_count"`
	Degraded      bool            `json:"degraded,omitempty"`
}

// ResolveAvailability applies the pricing rules to one content item. Lookup failures never
// block: the content is returned as available at its base price with Degraded set.
func (s *PricingService) ResolveAvailability(ctx context.Context, content *model.Content, countryCode string) entity.Availability {
	if countryCode == "" {
		return entity.Availability{Available: true, Price: content.Price, Currency: s.defaultCurrency}
	}

	currency, err := s.currencyFor(ctx, countryCode)
	if err != nil {
		s.logDegraded(ctx, countryCode, err)
		return s.failOpen(content)
	}

	refCodes, err := s.resolveRefs(ctx, content.Countries)
	if err != nil {
		s.logDegraded(ctx, countryCode, err)
		return s.failOpen(content)
	}

	return decideAvailability(content, countryCode, currency, refCodes)
}

// FilterAvailable keeps the contents offered in countryCode, in input order. When a lookup
// fails the input comes back unfiltered.
func (s *PricingService) FilterAvailable(ctx context.Context, contents []model.Content, countryCode string) *FilterResult {
	result := &FilterResult{OriginalCount: len(contents), Items: make([]PricedContent, 0, len(contents))}

	if countryCode == "" {
		for i := range contents {
			result.Items = append(result.Items, PricedContent{
				Content:      contents[i],
				Availability: entity.Availability{Available: true, Price: contents[i].Price, Currency: s.defaultCurrency},
			})
		}
		result.FilteredCount = len(result.Items)
		return result
	}

	currency, err := s.currencyFor(ctx, countryCode)
	var refCodes map[primitive.ObjectID]string
	if err == nil {
		var refs []primitive.ObjectID
		for i := range contents {
			refs = append(refs, contents[i].Countries...)
		}
		refCodes, err = s.resolveRefs(ctx, refs)
	}
	if err != nil {
		s.logDegraded(ctx, countryCode, err)
		result.Degraded = true
		for i := range contents {
			result.Items = append(result.Items, PricedContent{Content: contents[i], Availability: s.failOpen(&contents[i])})
		}
		result.FilteredCount = len(result.Items)
		return result
	}

	for i := range contents {
		availability := decideAvailability(&contents[i], countryCode, currency, refCodes)
		if availability.Available {
			result.Items = append(result.Items, PricedContent{Content: contents[i], Availability: availability})
		}
	}
	result.FilteredCount = len(result.Items)
	return result
}

// decideAvailability is the rule chain; the first matching rule wins.
func decideAvailability(content *model.Content, countryCode, currency string, refCodes map[primitive.ObjectID]string) entity.Availability {
	if content.UseGlobalPrice {
		return entity.Availability{Available: true, Price: content.Price, Currency: currency}
	}

	for _, cp := range content.CountryPrices {
		if strings.EqualFold(cp.Country, countryCode) {
			return entity.Availability{Available: true, Price: cp.Price, Currency: currency}
		}
	}

	for _, ref := range content.Countries {
		if code, ok := refCodes[ref]; ok && strings.EqualFold(code, countryCode) {
			return entity.Availability{Available: true, Price: content.Price, Currency: currency}
		}
	}

	if len(content.CountryPrices) == 0 && len(content.Countries) == 0 {
		return entity.Availability{Available: true, Price: content.Price, Currency: currency}
	}

	return entity.Availability{
		Available: false,
		Currency:  currency,
		Reason:    "Available only in: " + strings.Join(availableIn(content, refCodes), ", "),
	}
}

func availableIn(content *model.Content, refCodes map[primitive.ObjectID]string) []string {
	seen := make(map[string]bool)
	var codes []string
	add := func(code string) {
		code = strings.ToUpper(code)
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	for _, cp := range content.CountryPrices {
		add(cp.Country)
	}
	for _, ref := range content.Countries {
		add(refCodes[ref])
	}
	sort.Strings(codes)
	return codes
}

// currencyFor returns the billing currency of countryCode. Unknown countries bill in the default currency.
func (s *PricingService) currencyFor(ctx context.Context, countryCode string) (string, error) {
	country, err := s.countries.FindByCode(ctx, strings.ToUpper(countryCode))
	if err != nil {
		if errors.Is(err, domainErrors.ErrCountryNotFound) {
			return s.defaultCurrency, nil
		}
		return "", err
	}
	if country.Currency == "" {
		return s.defaultCurrency, nil
	}
	return country.Currency, nil
}

func (s *PricingService) resolveRefs(ctx context.Context, refs []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	countries, err := s.countries.FindByIDs(ctx, uniqueIDs(refs))
	if err != nil {
		return nil, err
	}
	codes := make(map[primitive.ObjectID]string, len(countries))
	for id, c := range countries {
		codes[id] = c.Code
	}
	return codes, nil
}

func (s *PricingService) failOpen(content *model.Content) entity.Availability {
	return entity.Availability{Available: true, Price: content.Price, Currency: s.defaultCurrency, Degraded: true}
}

func (s *PricingService) logDegraded(ctx context.Context, countryCode string, err error) {
	logger.For(ctx, s.logger).Warn("Country lookup failed, serving content unfiltered",
		zap.String("country", countryCode),
		zap.Error(err))
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
