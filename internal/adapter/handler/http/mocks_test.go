package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	"github.com/wekeepgrowing/ott-entitlement/internal/middleware/auth"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

type MockSettlementUsecase struct {
	mock.Mock
}

func (m *MockSettlementUsecase) CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*usecase.OrderResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.OrderResult), args.Error(1)
}

func (m *MockSettlementUsecase) ConfirmPayment(ctx context.Context, in usecase.ConfirmInput) (*model.Entitlement, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *MockSettlementUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) (*usecase.WebhookResult, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.WebhookResult), args.Error(1)
}

func (m *MockSettlementUsecase) Refund(ctx context.Context, in usecase.RefundInput) (*model.Entitlement, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

type MockEntitlementChecker struct {
	mock.Mock
}

func (m *MockEntitlementChecker) Check(ctx context.Context, in usecase.CheckInput) (*usecase.CheckResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CheckResult), args.Error(1)
}

type MockGrantUsecase struct {
	mock.Mock
}

func (m *MockGrantUsecase) Grant(ctx context.Context, in usecase.GrantInput) (*usecase.GrantResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GrantResult), args.Error(1)
}

func (m *MockGrantUsecase) Remove(ctx context.Context, id primitive.ObjectID, removedBy string) error {
	return m.Called(ctx, id, removedBy).Error(0)
}

type MockContentUsecase struct {
	mock.Mock
}

func (m *MockContentUsecase) ReadContent(ctx context.Context, in usecase.ReadInput) (*usecase.ContentView, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ContentView), args.Error(1)
}

func (m *MockContentUsecase) ListChannelContents(ctx context.Context, channel primitive.ObjectID, country string, limit int64) (*usecase.FilterResult, error) {
	args := m.Called(ctx, channel, country, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.FilterResult), args.Error(1)
}

type MockDeviceUsecase struct {
	mock.Mock
}

func (m *MockDeviceUsecase) ValidateDeviceAccess(ctx context.Context, userID, deviceID string) (entity.DeviceDecision, error) {
	args := m.Called(ctx, userID, deviceID)
	return args.Get(0).(entity.DeviceDecision), args.Error(1)
}

func (m *MockDeviceUsecase) UpdateUserDevice(ctx context.Context, userID, newDeviceID string) error {
	return m.Called(ctx, userID, newDeviceID).Error(0)
}

type MockViewResetter struct {
	mock.Mock
}

func (m *MockViewResetter) ResetViews(ctx context.Context, period repository.ViewPeriod) (int64, error) {
	args := m.Called(ctx, period)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Record(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, filter repository.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLog), args.Error(1)
}

type MockCountryLookup struct {
	mock.Mock
}

func (m *MockCountryLookup) CountryCode(ip string) (string, error) {
	args := m.Called(ip)
	return args.String(0), args.Error(1)
}

// newContext builds an echo context for method/target with an optional JSON body and
// authenticated user.
func newContext(method, target, body string, user *auth.AuthUser) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewRequestValidator()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func testUser() *auth.AuthUser {
	return &auth.AuthUser{UserID: primitive.NewObjectID(), Email: "viewer@example.com", Role: "user", DeviceID: "device-1"}
}
