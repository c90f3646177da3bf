// Package cache keeps read results keyed by query and drops them by tag. Writers call
// Invalidate with the tags their change affects; readers that subscribed to one of those
// tags receive an Event and refetch.
package cache

import (
	"context"
	"slices"
)

type Tag string

const (
	TagUser        Tag = "User"
	TagTransaction Tag = "Transaction"
	TagCategory    Tag = "Category"
	TagProduct     Tag = "Product"
	TagBrand       Tag = "Brand"
	TagVariant     Tag = "Variant"
	TagSupplier    Tag = "Supplier"
)

// affected lists, per written resource, every tag whose reads embed that resource.
var affected = map[Tag][]Tag{
	TagUser:        {TagUser},
	TagTransaction: {TagTransaction, TagVariant},
	TagCategory:    {TagCategory},
	TagProduct:     {TagProduct, TagCategory, TagBrand},
	TagBrand:       {TagBrand, TagProduct},
	TagVariant:     {TagVariant, TagBrand, TagCategory},
	TagSupplier:    {TagSupplier},
}

// Affected returns the tags a write to resource invalidates.
func Affected(resource Tag) []Tag {
	if tags, ok := affected[resource]; ok {
		return slices.Clone(tags)
	}
	return []Tag{resource}
}

// Event tells a subscriber that entries carrying Tags were dropped.
type Event struct {
	Tags []Tag `json:"tags"`
}

// Version is the invalidation generation of a set of tags. It grows every time one of
// them is invalidated.
type Version uint64

type Store interface {
	// Get returns the cached value for key; ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Version reports the current generation of tags. Readers take it before loading
	// the value they are about to Set.
	Version(ctx context.Context, tags ...Tag) (Version, error)
	// Set stores value unless one of tags was invalidated after v was taken, in which
	// case the value may predate the write and is dropped.
	Set(ctx context.Context, key string, value []byte, v Version, tags ...Tag) error
	// Invalidate drops every entry carrying one of tags and notifies subscribers.
	Invalidate(ctx context.Context, tags ...Tag) error
	// Subscribe delivers an Event for each invalidation touching one of tags until ctx
	// is done, then closes the channel. A pending undelivered event absorbs later ones.
	Subscribe(ctx context.Context, tags ...Tag) (<-chan Event, error)
}

func intersects(a, b []Tag) bool {
	for _, t := range a {
		if slices.Contains(b, t) {
			return true
		}
	}
	return false
}

// notify hands ev to ch unless an earlier event is still waiting.
func notify(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
