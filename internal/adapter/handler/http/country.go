package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CountryHeader lets an edge proxy pass the viewer country it already resolved.
const CountryHeader = "X-Country-Code"

type countryResolver struct {
	lookup CountryLookup
	logger *zap.Logger
}

// resolve prefers an explicit value, then the edge header, then a GeoIP lookup of the client IP.
// An unresolved country is "", which the pricing rules treat as unrestricted.
func (r countryResolver) resolve(c echo.Context, explicit string) string {
	if explicit != "" {
		return strings.ToUpper(strings.TrimSpace(explicit))
	}
	if h := c.Request().Header.Get(CountryHeader); h != "" {
		return strings.ToUpper(strings.TrimSpace(h))
	}
	if r.lookup == nil {
		return ""
	}
	code, err := r.lookup.CountryCode(c.RealIP())
	if err != nil {
		r.logger.Debug("GeoIP lookup failed", zap.String("ip", c.RealIP()), zap.Error(err))
		return ""
	}
	return code
}
