// Package spatial answers "what feature is under the cursor" with an R-tree
// over screen-space boxes. The index is rebuilt from projected positions
// whenever the view changes, so queries work in plain pixels.
package spatial

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// DefaultTolerance is the pick radius in pixels.
const DefaultTolerance = 3.0

// Kind tells what geometry an entry stands for.
type Kind int

const (
	KindPoint Kind = iota
	KindSegment
)

// Entry is one hit-testable item: a marker or one polyline segment, expanded
// by the pick tolerance. ID preserves insertion order and breaks ties.
type Entry struct {
	ID      int
	Kind    Kind
	Layer   int
	Feature int
	Segment int
	Meta    map[string]any

	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *Entry) Bounds() rtreego.Rect {
	return e.rect
}

// NewPointEntry builds an entry for a marker at screen position (x, y).
func NewPointEntry(id, layer, feature int, x, y, tolerance float64, meta map[string]any) *Entry {
	e := &Entry{ID: id, Kind: KindPoint, Layer: layer, Feature: feature, Meta: meta}
	e.rect = paddedRect(x, y, x, y, tolerance)
	return e
}

// NewSegmentEntry builds an entry for one polyline segment between screen
// positions (x1, y1) and (x2, y2).
func NewSegmentEntry(id, layer, feature, segment int, x1, y1, x2, y2, tolerance float64, meta map[string]any) *Entry {
	e := &Entry{ID: id, Kind: KindSegment, Layer: layer, Feature: feature, Segment: segment, Meta: meta}
	e.rect = paddedRect(math.Min(x1, x2), math.Min(y1, y2), math.Max(x1, x2), math.Max(y1, y2), tolerance)
	return e
}

func paddedRect(minX, minY, maxX, maxY, pad float64) rtreego.Rect {
	if pad <= 0 {
		pad = DefaultTolerance
	}
	point := rtreego.Point{minX - pad, minY - pad}
	lengths := []float64{maxX - minX + 2*pad, maxY - minY + 2*pad}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// Index is a rebuildable R-tree of entries.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{tree: rtreego.NewTree(2, 25, 50)}
}

// Rebuild replaces the index contents with the given entries.
func (idx *Index) Rebuild(entries []*Entry) {
	idx.tree = rtreego.NewTree(2, 25, 50)
	for _, e := range entries {
		idx.tree.Insert(e)
	}
	idx.size = len(entries)
}

// Len is the number of indexed entries.
func (idx *Index) Len() int {
	return idx.size
}

// HitTest returns the entry whose box contains (x, y) within the tolerance,
// preferring the earliest inserted on overlap, or nil when nothing is hit.
func (idx *Index) HitTest(x, y, tolerance float64) *Entry {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	probe, err := rtreego.NewRect(rtreego.Point{x - tolerance, y - tolerance}, []float64{2 * tolerance, 2 * tolerance})
	if err != nil {
		return nil
	}

	var best *Entry
	for _, s := range idx.tree.SearchIntersect(probe) {
		e, ok := s.(*Entry)
		if !ok {
			continue
		}
		if best == nil || e.ID < best.ID {
			best = e
		}
	}
	return best
}
