package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/render"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/cache"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/events"
)

// Deps are the collaborators shared by every resource handler. All handlers of one
// server must share the same Cache for cross-resource invalidation to work.
type Deps struct {
	Cache  cache.Store
	Events events.Publisher
}

// resource holds what the CRUD handlers of one entity have in common: its display name,
// its cache tag and where writes are announced.
type resource struct {
	name      string
	tag       cache.Tag
	duplicate string
	deps      Deps
}

func newResource(name string, tag cache.Tag, deps Deps) resource {
	if deps.Events == nil {
		deps.Events = events.Log{}
	}
	return resource{name: name, tag: tag, deps: deps}
}

// list serves a read through the shared cache. The entry is keyed by path and tagged
// with the resource, so any write that affects the resource drops it. A result loaded
// while such a write landed is served but not cached.
func (res *resource) list(w http.ResponseWriter, r *http.Request, load func() (any, error)) {
	key := "api:" + r.URL.Path
	if b, ok, err := res.deps.Cache.Get(r.Context(), key); err != nil {
		log.Printf("cache get %s: %v", key, err)
	} else if ok {
		writeRaw(w, "HIT", b)
		return
	}

	version, verErr := res.deps.Cache.Version(r.Context(), res.tag)
	if verErr != nil {
		log.Printf("cache version %s: %v", key, verErr)
	}
	v, err := load()
	if err != nil {
		res.fail(w, r, err)
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		res.fail(w, r, err)
		return
	}
	if verErr == nil {
		if err := res.deps.Cache.Set(r.Context(), key, b, version, res.tag); err != nil {
			log.Printf("cache set %s: %v", key, err)
		}
	}
	writeRaw(w, "MISS", b)
}

func writeRaw(w http.ResponseWriter, cacheStatus string, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// changed drops the cached reads the write affects and announces it on the bus.
func (res *resource) changed(r *http.Request, op events.Op, id uint, data any) {
	if err := res.deps.Cache.Invalidate(r.Context(), cache.Affected(res.tag)...); err != nil {
		log.Printf("cache invalidate %s: %v", res.tag, err)
	}
	if err := res.deps.Events.Publish(r.Context(), events.New(res.name, op, id, data)); err != nil {
		log.Printf("publish %s: %v", events.Topic(res.name, op), err)
	}
}

func created(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}

func ok(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, v)
}
