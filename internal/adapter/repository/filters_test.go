package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

func TestIdentifierFilter(t *testing.T) {
	oid := primitive.NewObjectID()

	tests := []struct {
		name    string
		id      entity.Identifier
		want    bson.M
		wantErr bool
	}{
		{name: "object ref", id: entity.ObjectIdentifier(oid), want: bson.M{"_id": oid}},
		{name: "legacy numeric", id: entity.Identifier{Kind: entity.LegacyNumeric, Legacy: 1042}, want: bson.M{"legacy_id": int64(1042)}},
		{name: "zero value", id: entity.Identifier{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := identifierFilter(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiveFilter(t *testing.T) {
	user, channel, video, plan := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	now := int64(1_700_000_000_000)

	t.Run("video scope", func(t *testing.T) {
		got := liveFilter(repository.LiveQuery{User: user, Channel: channel, Now: now, Video: &video})

		assert.Equal(t, user, got["user"])
		assert.Equal(t, channel, got["channel"])
		assert.Equal(t, video, got["video"])
		assert.Equal(t, 1, got["status"])
		assert.Equal(t, 1, got["is_active"])
		assert.Equal(t, bson.M{"$lte": now}, got["from"])
		assert.Equal(t, bson.M{"$gt": now}, got["to"])
		assert.NotContains(t, got, "plan")
	})

	t.Run("specific plan", func(t *testing.T) {
		got := liveFilter(repository.LiveQuery{User: user, Channel: channel, Now: now, Plan: &plan})
		assert.Equal(t, plan, got["plan"])
	})

	t.Run("any plan without channel", func(t *testing.T) {
		got := liveFilter(repository.LiveQuery{User: user, Now: now, AnyPlan: true})

		assert.Equal(t, bson.M{"$exists": true, "$ne": nil}, got["plan"])
		assert.NotContains(t, got, "channel")
		assert.NotContains(t, got, "video")
	})
}

func TestClaimFilter(t *testing.T) {
	got := claimFilter("order_1", 123)

	assert.Equal(t, "order_1", got["order_id"])
	branches, ok := got["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, branches, 3)
	assert.Equal(t, bson.M{"settlement_state": model.SettlementVerifying, "claimed_at": bson.M{"$lt": int64(123)}}, branches[2])
}

func TestFinalizeUpdate(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	event := model.PaymentEvent{OrderID: "order_1", PaymentID: "pay_1", Status: "captured"}

	t.Run("captured activates", func(t *testing.T) {
		got := finalizeUpdate(repository.SettlementUpdate{
			State:      model.SettlementCaptured,
			PaymentID:  "pay_1",
			AmountPaid: 999,
			From:       10,
			To:         20,
			Event:      event,
		}, at)

		set := got["$set"].(bson.M)
		assert.Equal(t, model.SettlementCaptured, set["settlement_state"])
		assert.Equal(t, 1, set["status"])
		assert.Equal(t, 1, set["is_active"])
		assert.Equal(t, 1, set["ispayment"])
		assert.Equal(t, int64(20), set["to"])
		assert.Equal(t, "pay_1", set["payment_id"])
		assert.Contains(t, got["$unset"].(bson.M), "claim_token")
		assert.Contains(t, got["$unset"].(bson.M), "failure_reason")
		assert.Equal(t, bson.M{"payments": event}, got["$push"])
	})

	t.Run("failed stays inactive", func(t *testing.T) {
		got := finalizeUpdate(repository.SettlementUpdate{
			State:         model.SettlementFailed,
			FailureReason: "declined",
			Event:         event,
		}, at)

		set := got["$set"].(bson.M)
		assert.Equal(t, "declined", set["failure_reason"])
		assert.NotContains(t, set, "status")
		assert.NotContains(t, set, "is_active")
		assert.NotContains(t, set, "payment_id")
	})
}

func TestRefundUpdate(t *testing.T) {
	got := refundUpdate(model.RefundInfo{RefundID: "rfnd_1", Amount: 999}, model.PaymentEvent{Status: "refunded"}, time.Now())

	set := got["$set"].(bson.M)
	assert.Equal(t, model.SettlementRefunded, set["settlement_state"])
	assert.Equal(t, 0, set["status"])
	assert.Equal(t, 0, set["is_active"])
}

func TestViewUpdates(t *testing.T) {
	inc := incrementViewsUpdate(time.Now())["$inc"].(bson.M)
	assert.Len(t, inc, 4)
	for _, field := range []string{"views.today", "views.weekly", "views.monthly", "views.total"} {
		assert.Equal(t, 1, inc[field])
	}

	field, err := resetViewsField(repository.ViewsDaily)
	require.NoError(t, err)
	assert.Equal(t, "views.today", field)

	_, err = resetViewsField("total")
	assert.Error(t, err)
}
