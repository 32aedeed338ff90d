package engine

import "github.com/slipway-maps/slipway/spatial"

// EventType names the map events callers can subscribe to.
type EventType string

const (
	EventMove        EventType = "move"
	EventZoom        EventType = "zoom"
	EventClick       EventType = "click"
	EventHover       EventType = "hover"
	EventMouseDown   EventType = "mousedown"
	EventMouseUp     EventType = "mouseup"
	EventContextMenu EventType = "contextmenu"
	EventDragEnd     EventType = "dragend"
)

// Hit sources name the layer family a handle belongs to.
const (
	HitSourcePoints  = "points"
	HitSourceLines   = "lines"
	HitSourceGeoJSON = "geojson"
)

// Hit describes the feature under the cursor for click and hover events.
// Layer is a handle within the family named by Source.
type Hit struct {
	Source  string
	Kind    spatial.Kind
	Layer   int
	Feature int
	Segment int
	Meta    map[string]any
}

// Event carries the map state at the moment it fired. Lat/Lng and X/Y are
// the cursor position for pointer events and the view center otherwise.
type Event struct {
	Type   EventType
	Lat    float64
	Lng    float64
	X      float64
	Y      float64
	Zoom   float64
	Bounds [4]float64
	Hit    *Hit
}

// Handler receives events; handlers run synchronously on the engine tick.
type Handler func(Event)

type dispatcher struct {
	nextID   int
	handlers map[EventType]map[int]Handler
}

func (d *dispatcher) on(t EventType, h Handler) int {
	if d.handlers == nil {
		d.handlers = make(map[EventType]map[int]Handler)
	}
	if d.handlers[t] == nil {
		d.handlers[t] = make(map[int]Handler)
	}
	id := d.nextID
	d.nextID++
	d.handlers[t][id] = h
	return id
}

func (d *dispatcher) off(t EventType, id int) bool {
	hs, ok := d.handlers[t]
	if !ok {
		return false
	}
	if _, ok := hs[id]; !ok {
		return false
	}
	delete(hs, id)
	return true
}

func (d *dispatcher) emit(ev Event) {
	for _, h := range d.handlers[ev.Type] {
		h(ev)
	}
}

func (d *dispatcher) has(t EventType) bool {
	return len(d.handlers[t]) > 0
}
