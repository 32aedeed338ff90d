package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitTestPoint(t *testing.T) {
	idx := NewIndex()
	idx.Rebuild([]*Entry{
		NewPointEntry(0, 0, 0, 100, 100, DefaultTolerance, map[string]any{"name": "marker"}),
	})

	hit := idx.HitTest(101, 99, DefaultTolerance)
	require.NotNil(t, hit)
	assert.Equal(t, KindPoint, hit.Kind)
	assert.Equal(t, "marker", hit.Meta["name"])

	assert.Nil(t, idx.HitTest(200, 200, DefaultTolerance))
}

func TestHitTestSegment(t *testing.T) {
	idx := NewIndex()
	idx.Rebuild([]*Entry{
		NewSegmentEntry(0, 1, 2, 0, 10, 10, 110, 10, DefaultTolerance, nil),
	})

	hit := idx.HitTest(60, 11, DefaultTolerance)
	require.NotNil(t, hit)
	assert.Equal(t, KindSegment, hit.Kind)
	assert.Equal(t, 1, hit.Layer)
	assert.Equal(t, 2, hit.Feature)

	assert.Nil(t, idx.HitTest(60, 30, DefaultTolerance))
}

func TestHitTestPrefersEarliestEntry(t *testing.T) {
	idx := NewIndex()
	idx.Rebuild([]*Entry{
		NewPointEntry(0, 0, 0, 50, 50, DefaultTolerance, nil),
		NewPointEntry(1, 0, 1, 50, 50, DefaultTolerance, nil),
		NewPointEntry(2, 0, 2, 50, 50, DefaultTolerance, nil),
	})

	hit := idx.HitTest(50, 50, DefaultTolerance)
	require.NotNil(t, hit)
	assert.Equal(t, 0, hit.ID)
}

func TestRebuildReplacesContents(t *testing.T) {
	idx := NewIndex()
	idx.Rebuild([]*Entry{NewPointEntry(0, 0, 0, 10, 10, DefaultTolerance, nil)})
	require.NotNil(t, idx.HitTest(10, 10, DefaultTolerance))

	idx.Rebuild(nil)

	assert.Zero(t, idx.Len())
	assert.Nil(t, idx.HitTest(10, 10, DefaultTolerance))
}
