package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocationLimit(t *testing.T) {
	assert.Equal(t, GuaranteedAllocationSize, AllocationLimit(8<<30))
	assert.Equal(t, uint64(256<<20), AllocationLimit(256<<20))
	assert.Equal(t, GuaranteedAllocationSize, AllocationLimit(0))
}
