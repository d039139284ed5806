package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

func TestContentHandler_Read(t *testing.T) {
	contentID := primitive.NewObjectID()
	url := "https://cdn.example.com/master.m3u8"

	tests := []struct {
		name        string
		param       string
		play        bool
		wantInput   func(in usecase.ReadInput) bool
		view        *usecase.ContentView
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:  "strict read with url",
			param: contentID.Hex(),
			wantInput: func(in usecase.ReadInput) bool {
				return in.Policy == usecase.DevicePolicyStrict && in.ContentID == entity.ObjectIdentifier(contentID) && in.DeviceID == "device-1"
			},
			view:        &usecase.ContentView{PlayURL: &url, Entitled: true},
			wantStatus:  http.StatusOK,
			wantMessage: "Content fetched",
		},
		{
			name:  "play migrates the session",
			param: contentID.Hex(),
			play:  true,
			wantInput: func(in usecase.ReadInput) bool {
				return in.Policy == usecase.DevicePolicyMigrate
			},
			view:        &usecase.ContentView{PlayURL: &url},
			wantStatus:  http.StatusOK,
			wantMessage: "Content fetched",
		},
		{
			name:  "legacy numeric id with redacted url",
			param: "1042",
			wantInput: func(in usecase.ReadInput) bool {
				return in.ContentID.Kind == entity.LegacyNumeric && in.ContentID.Legacy == 1042
			},
			view:        &usecase.ContentView{Denials: []string{entity.ReasonNotEntitled}},
			wantStatus:  http.StatusOK,
			wantMessage: "Content fetched without playable url",
		},
		{
			name:       "invalid id",
			param:      "not-an-id",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing content",
			param:      contentID.Hex(),
			wantInput:  func(usecase.ReadInput) bool { return true },
			err:        domainErrors.ErrContentNotFound,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents := new(MockContentUsecase)
			if tt.wantInput != nil {
				contents.On("ReadContent", mock.Anything, mock.MatchedBy(tt.wantInput)).Return(tt.view, tt.err)
			}
			h := NewContentHandler(contents, nil, zap.NewNop())

			c, rec := newContext(http.MethodGet, "/", "", testUser())
			c.SetParamNames("id")
			c.SetParamValues(tt.param)

			if tt.play {
				require.NoError(t, h.PlayContent(c))
			} else {
				require.NoError(t, h.GetContent(c))
			}
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, decodeResponse(t, rec).Message)
			}
			contents.AssertExpectations(t)
		})
	}
}

func TestContentHandler_ReadRequiresAuth(t *testing.T) {
	h := NewContentHandler(new(MockContentUsecase), nil, zap.NewNop())
	c, rec := newContext(http.MethodGet, "/", "", nil)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())

	require.NoError(t, h.GetContent(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContentHandler_ListChannelContents(t *testing.T) {
	channelID := primitive.NewObjectID()

	t.Run("explicit country wins over header", func(t *testing.T) {
		contents := new(MockContentUsecase)
		contents.On("ListChannelContents", mock.Anything, channelID, "IN", int64(10)).
			Return(&usecase.FilterResult{OriginalCount: 3, FilteredCount: 2}, nil)
		h := NewContentHandler(contents, nil, zap.NewNop())

		c, rec := newContext(http.MethodGet, "/?country=in&limit=10", "", nil)
		c.Request().Header.Set(CountryHeader, "US")
		c.SetParamNames("channelId")
		c.SetParamValues(channelID.Hex())

		require.NoError(t, h.ListChannelContents(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		contents.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		h := NewContentHandler(new(MockContentUsecase), nil, zap.NewNop())
		c, rec := newContext(http.MethodGet, "/?limit=-1", "", nil)
		c.SetParamNames("channelId")
		c.SetParamValues(channelID.Hex())

		require.NoError(t, h.ListChannelContents(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
