package core

import (
	"fmt"
	"math"
	"math/bits"
)

// MaxPoolCapacity is the largest usable capacity; the all-ones id is reserved as invalid.
const MaxPoolCapacity uint32 = math.MaxUint32

// IDPool hands out the smallest currently free id in [0, capacity).
// The free set is a bitmap that grows one 64-id word at a time.
type IDPool struct {
	words    []uint64
	capacity uint32
	used     uint32
}

func NewIDPool(capacity uint32) *IDPool {
	if capacity == 0 || capacity > MaxPoolCapacity {
		capacity = MaxPoolCapacity
	}
	return &IDPool{capacity: capacity}
}

// CreateID marks the smallest free id as used and returns it.
func (p *IDPool) CreateID() (uint32, error) {
	for i, w := range p.words {
		if w == math.MaxUint64 {
			continue
		}
		id := uint64(i)*64 + uint64(bits.TrailingZeros64(^w))
		if id >= uint64(p.capacity) {
			break
		}
		p.words[i] |= 1 << (id % 64)
		p.used++
		return uint32(id), nil
	}
	id := uint64(len(p.words)) * 64
	if id >= uint64(p.capacity) {
		err := fmt.Errorf("%w: capacity %d reached", ErrPoolExhausted, p.capacity)
		LogError(err.Error())
		return 0, err
	}
	p.words = append(p.words, 1)
	p.used++
	return uint32(id), nil
}

// DestroyID returns id to the free set.
func (p *IDPool) DestroyID(id uint32) error {
	if !p.IsUsed(id) {
		return fmt.Errorf("%w: id %d is not in use", ErrInvalidHandle, id)
	}
	p.words[id/64] &^= 1 << (id % 64)
	p.used--
	return nil
}

func (p *IDPool) IsUsed(id uint32) bool {
	w := int(id / 64)
	if w >= len(p.words) {
		return false
	}
	return p.words[w]&(1<<(id%64)) != 0
}

// Len returns the number of ids in use.
func (p *IDPool) Len() int {
	return int(p.used)
}

func (p *IDPool) Capacity() uint32 {
	return p.capacity
}

// Reset frees every id.
func (p *IDPool) Reset() {
	p.words = p.words[:0]
	p.used = 0
}
