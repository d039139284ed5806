package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	"github.com/wekeepgrowing/ott-entitlement/internal/middleware/auth"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

type ContentHandler struct {
	contents ContentUsecase
	country  countryResolver
	logger   *zap.Logger
}

func NewContentHandler(contents ContentUsecase, geo CountryLookup, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		contents: contents,
		country:  countryResolver{lookup: geo, logger: logger},
		logger:   logger,
	}
}

// GetContent reads content under the strict device guard
// GET /api/v1/contents/:id
func (h *ContentHandler) GetContent(c echo.Context) error {
	return h.read(c, usecase.DevicePolicyStrict)
}

// PlayContent reads content and moves the caller's device session here
// POST /api/v1/contents/:id/play
func (h *ContentHandler) PlayContent(c echo.Context) error {
	return h.read(c, usecase.DevicePolicyMigrate)
}

func (h *ContentHandler) read(c echo.Context, policy usecase.DevicePolicy) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return unauthenticated(c)
	}

	id, err := entity.ParseIdentifier(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid content id")
	}

	view, err := h.contents.ReadContent(c.Request().Context(), usecase.ReadInput{
		UserID:    user.UserID.Hex(),
		DeviceID:  user.DeviceID,
		ContentID: id,
		Country:   h.country.resolve(c, c.QueryParam("country")),
		IP:        c.RealIP(),
		Policy:    policy,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	message := "Content fetched"
	if view.PlayURL == nil {
		message = "Content fetched without playable url"
	}
	return respondOK(c, http.StatusOK, message, view)
}

// ListChannelContents lists a channel's catalog filtered by country
// GET /api/v1/channels/:channelId/contents?country=&limit=
func (h *ContentHandler) ListChannelContents(c echo.Context) error {
	channelID, err := primitive.ObjectIDFromHex(c.Param("channelId"))
	if err != nil {
		return badRequest(c, "Invalid channel id")
	}

	var limit int64
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			return badRequest(c, "Invalid limit parameter")
		}
	}

	result, err := h.contents.ListChannelContents(c.Request().Context(), channelID, h.country.resolve(c, c.QueryParam("country")), limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, http.StatusOK, "Contents fetched", result)
}
