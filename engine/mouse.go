package engine

import (
	"math"
	"time"

	"github.com/slipway-maps/slipway/spatial"
)

// clickTolerance is how far the cursor may travel between press and release
// and still count as a click.
const clickTolerance = 3.0

type mouseState struct {
	down     bool
	dragging bool
	lastX    float64
	lastY    float64
	downX    float64
	downY    float64
	lastMove time.Time
}

// HandleMouseDown begins a potential drag or click.
func (m *Map) HandleMouseDown(x, y float64, now time.Time) {
	m.mouse = mouseState{
		down:     true,
		lastX:    x,
		lastY:    y,
		downX:    x,
		downY:    y,
		lastMove: now,
	}
	m.momentum.StartDrag()
	m.emitPointer(EventMouseDown, x, y, nil)
}

// HandleMouseMove pans while a drag is in progress and hit-tests for hover
// events otherwise.
func (m *Map) HandleMouseMove(x, y float64, now time.Time) {
	if !m.mouse.down {
		if m.events.has(EventHover) {
			m.emitPointer(EventHover, x, y, m.hitTest(x, y))
		}
		return
	}

	dx := x - m.mouse.lastX
	dy := y - m.mouse.lastY

	if !m.mouse.dragging && math.Hypot(x-m.mouse.downX, y-m.mouse.downY) > clickTolerance {
		m.mouse.dragging = true
	}

	if m.mouse.dragging && (dx != 0 || dy != 0) {
		dt := now.Sub(m.mouse.lastMove).Seconds()
		if m.view.Pan(dx, dy) {
			m.momentum.Sample(dt, dx, dy)
			m.viewChanged(false)
		}
	}

	m.mouse.lastX = x
	m.mouse.lastY = y
	m.mouse.lastMove = now
}

// HandleMouseUp ends a drag with possible momentum, or fires a click.
func (m *Map) HandleMouseUp(x, y float64, now time.Time) {
	wasDragging := m.mouse.dragging
	m.mouse.down = false
	m.mouse.dragging = false

	m.emitPointer(EventMouseUp, x, y, nil)

	if wasDragging {
		m.momentum.Release()
		m.emitPointer(EventDragEnd, x, y, nil)
		return
	}
	m.emitPointer(EventClick, x, y, m.hitTest(x, y))
}

// HandleContextMenu fires a contextmenu event with the feature under the
// cursor.
func (m *Map) HandleContextMenu(x, y float64) {
	m.emitPointer(EventContextMenu, x, y, m.hitTest(x, y))
}

// HandleWheel zooms one level toward or away from the cursor. Negative
// deltas zoom in, matching wheel-up on every platform.
func (m *Map) HandleWheel(x, y, deltaY float64) {
	if deltaY == 0 {
		return
	}
	m.ZoomAtPoint(deltaY < 0, x, y)
}

func (m *Map) emitPointer(t EventType, x, y float64, hit *Hit) {
	if !m.events.has(t) {
		return
	}
	lat, lng := m.view.Unproject(x, y)
	m.events.emit(Event{
		Type:   t,
		Lat:    lat,
		Lng:    lng,
		X:      x,
		Y:      y,
		Zoom:   m.view.Zoom(),
		Bounds: m.view.Bounds(),
		Hit:    hit,
	})
}

// HitTest reports the topmost feature within tolerance of a screen
// position, or nil when nothing is there.
func (m *Map) HitTest(x, y float64) *Hit {
	return m.hitTest(x, y)
}

// hitTest finds the feature under a screen position, refreshing the index
// first when the view or layers changed since the last tick.
func (m *Map) hitTest(x, y float64) *Hit {
	if m.indexDirty {
		m.rebuildIndex()
	}
	e := m.index.HitTest(x, y, spatial.DefaultTolerance)
	if e == nil || e.ID < 0 || e.ID >= len(m.hits) {
		return nil
	}
	info := m.hits[e.ID]
	return &Hit{
		Source:  info.source,
		Kind:    info.kind,
		Layer:   info.layer,
		Feature: info.feature,
		Segment: info.segment,
		Meta:    info.meta,
	}
}
