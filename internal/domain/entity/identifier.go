package entity

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IdentifierKind int

const (
	ObjectRef IdentifierKind = iota + 1
	LegacyNumeric
)

// Identifier addresses a record either by its ObjectID or by the numeric id it had before migration.
type Identifier struct {
	Kind   IdentifierKind
	Object primitive.ObjectID
	Legacy int64
}

// ParseIdentifier classifies a raw path or body id.
func ParseIdentifier(raw string) (Identifier, error) {
	if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
		return Identifier{Kind: ObjectRef, Object: oid}, nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
		return Identifier{Kind: LegacyNumeric, Legacy: n}, nil
	}
	return Identifier{}, fmt.Errorf("invalid identifier %q", raw)
}

// ObjectIdentifier wraps an ObjectID.
func ObjectIdentifier(id primitive.ObjectID) Identifier {
	return Identifier{Kind: ObjectRef, Object: id}
}

func (i Identifier) String() string {
	switch i.Kind {
	case ObjectRef:
		return i.Object.Hex()
	case LegacyNumeric:
		return strconv.FormatInt(i.Legacy, 10)
	default:
		return ""
	}
}
