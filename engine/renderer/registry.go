package renderer

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type slot[T any] struct {
	value      *T
	generation uint32
}

// registry maps handles of one resource kind to their records. Records
// live in a flat slice indexed by id; ids come from the kind's own pool.
type registry[H ~uint32, T any] struct {
	kind  string
	pool  *core.IDPool
	slots []slot[T]
}

func newRegistry[H ~uint32, T any](kind string, capacity uint32) *registry[H, T] {
	return &registry[H, T]{
		kind: kind,
		pool: core.NewIDPool(capacity),
	}
}

func (r *registry[H, T]) insert(v *T) (H, error) {
	id, err := r.pool.CreateID()
	if err != nil {
		return H(metadata.InvalidID), fmt.Errorf("%s: %w", r.kind, err)
	}
	for uint32(len(r.slots)) <= id {
		r.slots = append(r.slots, slot[T]{})
	}
	r.slots[id].value = v
	return H(id), nil
}

func (r *registry[H, T]) get(h H) (*T, bool) {
	if uint32(h) == metadata.InvalidID || uint32(h) >= uint32(len(r.slots)) {
		return nil, false
	}
	v := r.slots[h].value
	return v, v != nil
}

func (r *registry[H, T]) available(h H) bool {
	_, ok := r.get(h)
	return ok
}

// lookup is get for operations: a missing record is a caller error.
func (r *registry[H, T]) lookup(h H) (*T, error) {
	v, ok := r.get(h)
	if !ok {
		err := fmt.Errorf("%s %d: %w", r.kind, uint32(h), core.ErrInvalidHandle)
		core.Assert(false, "%s", err.Error())
		return nil, err
	}
	return v, nil
}

func (r *registry[H, T]) remove(h H) (*T, bool) {
	v, ok := r.get(h)
	if !ok {
		return nil, false
	}
	r.slots[h].value = nil
	r.slots[h].generation++
	if err := r.pool.DestroyID(uint32(h)); err != nil {
		core.LogError("%s %d: %s", r.kind, uint32(h), err)
	}
	core.LogDebug("%s %d released (generation %d)", r.kind, uint32(h), r.slots[h].generation)
	return v, true
}

// ids returns the live handles in ascending order.
func (r *registry[H, T]) ids() []H {
	var out []H
	for i := range r.slots {
		if r.slots[i].value != nil {
			out = append(out, H(i))
		}
	}
	return out
}

func (r *registry[H, T]) len() int {
	return r.pool.Len()
}

func (r *registry[H, T]) clear() {
	for i := range r.slots {
		if r.slots[i].value != nil {
			r.slots[i].value = nil
			r.slots[i].generation++
		}
	}
	r.pool.Reset()
}
