package entity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
)

type ResourceKind string

const (
	ResourcePlan  ResourceKind = "plan"
	ResourceVideo ResourceKind = "video"
)

// Resource is what an entitlement check asks access to.
//
// A plan resource with a zero ID asks for any plan on the channel that applies to Category.
// A video resource asks for that video, which plan entitlements may also cover.
type Resource struct {
	Kind     ResourceKind
	ID       primitive.ObjectID
	Category model.ContentType
}

func PlanResource(id primitive.ObjectID) Resource {
	return Resource{Kind: ResourcePlan, ID: id}
}

func PlanScope(category model.ContentType) Resource {
	return Resource{Kind: ResourcePlan, Category: category}
}

func VideoResource(id primitive.ObjectID, category model.ContentType) Resource {
	return Resource{Kind: ResourceVideo, ID: id, Category: category}
}

// ResourceFor returns the resource guarding a piece of content.
func ResourceFor(c *model.Content) Resource {
	if c.Type.PlanOnly() {
		return PlanScope(c.Type)
	}
	return VideoResource(c.ID, c.Type)
}
