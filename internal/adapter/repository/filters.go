package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

// Collection names.
const (
	EntitlementsCollection = "entitlements"
	UsersCollection        = "users"
	ContentsCollection     = "contents"
	PlansCollection        = "plans"
	CountriesCollection    = "countries"
)

// identifierFilter is the only place a content identifier becomes a query.
func identifierFilter(id entity.Identifier) (bson.M, error) {
	switch id.Kind {
	case entity.ObjectRef:
		return bson.M{"_id": id.Object}, nil
	case entity.LegacyNumeric:
		return bson.M{"legacy_id": id.Legacy}, nil
	default:
		return nil, fmt.Errorf("unknown identifier kind %d", id.Kind)
	}
}

func liveFilter(q repository.LiveQuery) bson.M {
	filter := bson.M{
		"user":      q.User,
		"status":    1,
		"is_active": 1,
		"from":      bson.M{"$lte": q.Now},
		"to":        bson.M{"$gt": q.Now},
	}
	if !q.Channel.IsZero() {
		filter["channel"] = q.Channel
	}
	switch {
	case q.Video != nil:
		filter["video"] = *q.Video
	case q.Plan != nil:
		filter["plan"] = *q.Plan
	case q.AnyPlan:
		filter["plan"] = bson.M{"$exists": true, "$ne": nil}
	}
	return filter
}

// claimFilter matches an order that may be claimed: never settled, failed, or held by a claim
// older than staleBefore. Records without a settlement state predate state tracking.
func claimFilter(orderID string, staleBefore int64) bson.M {
	return bson.M{
		"order_id": orderID,
		"$or": bson.A{
			bson.M{"settlement_state": bson.M{"$in": bson.A{model.SettlementCreated, model.SettlementFailed}}},
			bson.M{"settlement_state": bson.M{"$in": bson.A{"", nil}}, "ispayment": bson.M{"$ne": 1}},
			bson.M{"settlement_state": model.SettlementVerifying, "claimed_at": bson.M{"$lt": staleBefore}},
		},
	}
}

func claimUpdate(token string, now int64) bson.M {
	return bson.M{
		"$set": bson.M{
			"settlement_state": model.SettlementVerifying,
			"claim_token":      token,
			"claimed_at":       now,
			"updated_at":       time.UnixMilli(now).UTC(),
		},
	}
}

func claimHolderFilter(id primitive.ObjectID, token string) bson.M {
	return bson.M{
		"_id":              id,
		"settlement_state": model.SettlementVerifying,
		"claim_token":      token,
	}
}

func finalizeUpdate(u repository.SettlementUpdate, at time.Time) bson.M {
	set := bson.M{
		"settlement_state": u.State,
		"updated_at":       at,
	}
	if u.PaymentID != "" {
		set["payment_id"] = u.PaymentID
	}

	unset := bson.M{"claim_token": "", "claimed_at": ""}
	if u.State == model.SettlementCaptured {
		set["amount_paid"] = u.AmountPaid
		set["from"] = u.From
		set["to"] = u.To
		set["status"] = 1
		set["is_active"] = 1
		set["ispayment"] = 1
		unset["failure_reason"] = ""
	} else {
		set["failure_reason"] = u.FailureReason
	}

	return bson.M{
		"$set":   set,
		"$unset": unset,
		"$push":  bson.M{"payments": u.Event},
	}
}

func failIfCreatedFilter(orderID string) bson.M {
	return bson.M{"order_id": orderID, "settlement_state": model.SettlementCreated}
}

func failUpdate(event model.PaymentEvent, reason string, at time.Time) bson.M {
	set := bson.M{
		"settlement_state": model.SettlementFailed,
		"failure_reason":   reason,
		"updated_at":       at,
	}
	if event.PaymentID != "" {
		set["payment_id"] = event.PaymentID
	}
	return bson.M{
		"$set":  set,
		"$push": bson.M{"payments": event},
	}
}

func refundUpdate(refund model.RefundInfo, event model.PaymentEvent, at time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"settlement_state": model.SettlementRefunded,
			"status":           0,
			"is_active":        0,
			"refund":           refund,
			"updated_at":       at,
		},
		"$push": bson.M{"payments": event},
	}
}

func incrementViewsUpdate(at time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"views.today":   1,
			"views.weekly":  1,
			"views.monthly": 1,
			"views.total":   1,
		},
		"$set": bson.M{"views_updated_at": at},
	}
}

func resetViewsField(period repository.ViewPeriod) (string, error) {
	switch period {
	case repository.ViewsDaily:
		return "views.today", nil
	case repository.ViewsWeekly:
		return "views.weekly", nil
	case repository.ViewsMonthly:
		return "views.monthly", nil
	default:
		return "", fmt.Errorf("unknown view period %q", period)
	}
}
