package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/provider"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

// MockEntitlementRepository is a mock implementation of EntitlementRepository
type MockEntitlementRepository struct {
	mock.Mock
}

func (m *MockEntitlementRepository) Create(ctx context.Context, e *model.Entitlement) error {
	args := m.Called(ctx, e)
	if args.Error(0) == nil && e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockEntitlementRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Entitlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *MockEntitlementRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Entitlement, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *MockEntitlementRepository) FindLive(ctx context.Context, q repository.LiveQuery) ([]model.Entitlement, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Entitlement), args.Error(1)
}

func (m *MockEntitlementRepository) ClaimForSettlement(ctx context.Context, orderID, token string, now, staleBefore int64) (*model.Entitlement, error) {
	args := m.Called(ctx, orderID, token, now, staleBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *MockEntitlementRepository) FinalizeSettlement(ctx context.Context, id primitive.ObjectID, token string, update repository.SettlementUpdate) (*model.Entitlement, error) {
	args := m.Called(ctx, id, token, update)
	if fn, ok := args.Get(0).(func(context.Context, primitive.ObjectID, string, repository.SettlementUpdate) *model.Entitlement); ok {
		return fn(ctx, id, token, update), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *MockEntitlementRepository) MarkFailedIfCreated(ctx context.Context, orderID string, event model.PaymentEvent, reason string) (*model.Entitlement, error) {
	args := m.Called(ctx, orderID, event, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *MockEntitlementRepository) MarkRefunded(ctx context.Context, id primitive.ObjectID, refund model.RefundInfo, event model.PaymentEvent) (*model.Entitlement, error) {
	args := m.Called(ctx, id, refund, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *MockEntitlementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindOtherDeviceHolder(ctx context.Context, deviceID string, exclude primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, deviceID, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetDevice(ctx context.Context, userID primitive.ObjectID, deviceID string, at time.Time) error {
	args := m.Called(ctx, userID, deviceID, at)
	return args.Error(0)
}

// MockContentRepository is a mock implementation of ContentRepository
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) FindByIdentifier(ctx context.Context, id entity.Identifier) (*model.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Content), args.Error(1)
}

func (m *MockContentRepository) ListByChannel(ctx context.Context, channel primitive.ObjectID, limit int64) ([]model.Content, error) {
	args := m.Called(ctx, channel, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Content), args.Error(1)
}

func (m *MockContentRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContentRepository) ResetViews(ctx context.Context, period repository.ViewPeriod) (int64, error) {
	args := m.Called(ctx, period)
	return args.Get(0).(int64), args.Error(1)
}

// MockPlanRepository is a mock implementation of PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Plan, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[primitive.ObjectID]*model.Plan), args.Error(1)
}

func (m *MockPlanRepository) Upsert(ctx context.Context, plan *model.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// MockCountryRepository is a mock implementation of CountryRepository
type MockCountryRepository struct {
	mock.Mock
}

func (m *MockCountryRepository) FindByCode(ctx context.Context, code string) (*model.Country, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Country), args.Error(1)
}

func (m *MockCountryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Country, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[primitive.ObjectID]*model.Country), args.Error(1)
}

func (m *MockCountryRepository) Upsert(ctx context.Context, country *model.Country) error {
	args := m.Called(ctx, country)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Record(ctx context.Context, entry *model.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, filter repository.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLog), args.Error(1)
}

// MockViewDedupCache is a mock implementation of ViewDedupCache
type MockViewDedupCache struct {
	mock.Mock
}

func (m *MockViewDedupCache) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

// MockPublisher is a mock implementation of messaging.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, req *provider.CreateOrderRequest) (*provider.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Order), args.Error(1)
}

func (m *MockPaymentGateway) VerifySignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}

func (m *MockPaymentGateway) CapturePayment(ctx context.Context, req *provider.CaptureRequest) (*provider.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Payment), args.Error(1)
}

func (m *MockPaymentGateway) GetPaymentDetails(ctx context.Context, paymentID string) (*provider.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Payment), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, req *provider.RefundRequest) (*provider.Refund, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Refund), args.Error(1)
}

func (m *MockPaymentGateway) ParseWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.WebhookEvent), args.Error(1)
}

func (m *MockPaymentGateway) PublicKey() string {
	return m.Called().String(0)
}

func (m *MockPaymentGateway) GetProviderName() string {
	return m.Called().String(0)
}

// recordingMetrics counts observations for assertions.
type recordingMetrics struct {
	settlements     []string
	deviceDecisions []string
	views           []bool
}

func (r *recordingMetrics) ObserveSettlement(operation, outcome string) {
	r.settlements = append(r.settlements, operation+":"+outcome)
}

func (r *recordingMetrics) ObserveDeviceDecision(path, reason string) {
	r.deviceDecisions = append(r.deviceDecisions, path+":"+reason)
}

func (r *recordingMetrics) ObserveView(counted bool) {
	r.views = append(r.views, counted)
}

func (r *recordingMetrics) ObserveGatewayCall(string, error, time.Duration) {}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
