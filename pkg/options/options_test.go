package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesDefaultsWhenNoOptionsGiven(t *testing.T) {
	o := New()
	assert.Equal(t, NewDefaultOptions(), o)
}

func TestNewAppliesOptionsInOrder(t *testing.T) {
	o := New(
		WithBufferSize(4096),
		WithPartitionPath("/tmp/custom.part"),
		WithPort(9000),
		WithDeleteOnClose(true),
		WithTrace(true),
	)
	assert.Equal(t, uint32(4096), o.BufferSizeBytes)
	assert.Equal(t, "/tmp/custom.part", o.PartitionPath)
	assert.Equal(t, uint16(9000), o.Port)
	assert.True(t, o.DeleteOnClose)
	assert.True(t, o.Trace)
}

func TestNewClampsGrowthPagesToMinimum(t *testing.T) {
	o := New(WithGrowthPages(1))
	assert.Equal(t, MinGrowthPages, o.GrowthPages)
}

func TestWithBufferSizeIgnoresZero(t *testing.T) {
	o := New(WithBufferSize(0))
	assert.Equal(t, DefaultBufferSize, o.BufferSizeBytes)
}

func TestWithPartitionPathIgnoresBlank(t *testing.T) {
	o := New(WithPartitionPath("   "))
	assert.Equal(t, DefaultPartitionPath, o.PartitionPath)
}
