// Package interaction turns timeline pointer events into clip store mutations.
package interaction

import (
	"math"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// Edge identifies which handle of a clip bar is being dragged.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
)

func (e Edge) String() string {
	if e == EdgeLeft {
		return "left"
	}
	return "right"
}

// Kind names the active drag for rendering.
type Kind string

const (
	KindMove        Kind = "move"
	KindResizeLeft  Kind = "resize-left"
	KindResizeRight Kind = "resize-right"
)

// State is one of Idle, Dragging or Resizing.
type State interface {
	isState()
}

type Idle struct{}

// Dragging moves a whole clip. Duration is captured when the drag starts.
type Dragging struct {
	Index    int
	Duration float64
}

type Resizing struct {
	Index int
	Edge  Edge
}

func (Idle) isState()     {}
func (Dragging) isState() {}
func (Resizing) isState() {}

// DragInfo describes the active drag.
type DragInfo struct {
	Index int  `json:"index"`
	Kind  Kind `json:"kind"`
}

// Clips is the part of the clip store the controller mutates.
type Clips interface {
	Clip(index int) (timeline.Clip, bool)
	SetBounds(index int, start, end float64) bool
	Select(index int) (timeline.Clip, error)
}

// Controller is the drag/resize state machine. Events must be delivered one
// at a time.
type Controller struct {
	clips Clips
	axis  timeline.Axis
	state State
}

func NewController(clips Clips, axis timeline.Axis) *Controller {
	return &Controller{clips: clips, axis: axis, state: Idle{}}
}

func (c *Controller) State() State {
	return c.state
}

// ActiveDrag reports the clip and kind of the interaction in progress.
func (c *Controller) ActiveDrag() (DragInfo, bool) {
	switch s := c.state.(type) {
	case Dragging:
		return DragInfo{Index: s.Index, Kind: KindMove}, true
	case Resizing:
		if s.Edge == EdgeLeft {
			return DragInfo{Index: s.Index, Kind: KindResizeLeft}, true
		}
		return DragInfo{Index: s.Index, Kind: KindResizeRight}, true
	default:
		return DragInfo{}, false
	}
}

// PressBody starts moving clip index. It is ignored unless the controller is
// idle and the clip exists.
func (c *Controller) PressBody(index int) bool {
	if _, idle := c.state.(Idle); !idle {
		return false
	}
	clip, ok := c.clips.Clip(index)
	if !ok {
		return false
	}
	c.state = Dragging{Index: index, Duration: clip.Duration()}
	return true
}

// PressEdge starts resizing one edge of clip index.
func (c *Controller) PressEdge(index int, edge Edge) bool {
	if _, idle := c.state.(Idle); !idle {
		return false
	}
	if _, ok := c.clips.Clip(index); !ok {
		return false
	}
	c.state = Resizing{Index: index, Edge: edge}
	return true
}

// Move applies a pointer position, in pixels from the timeline's left edge,
// to the active interaction. The last event wins. Reports whether a clip
// changed.
func (c *Controller) Move(x float64) bool {
	switch s := c.state.(type) {
	case Dragging:
		start := c.axis.TimeFromPixels(x)
		return c.clips.SetBounds(s.Index, start, start+s.Duration)
	case Resizing:
		clip, ok := c.clips.Clip(s.Index)
		if !ok {
			return false
		}
		t := c.axis.TimeFromPixels(x)
		if s.Edge == EdgeLeft {
			// end > 0 for any stored clip, so flooring at zero keeps start < end.
			start := math.Max(0, math.Min(t, clip.End-1))
			return c.clips.SetBounds(s.Index, start, clip.End)
		}
		return c.clips.SetBounds(s.Index, clip.Start, math.Max(t, clip.Start+1))
	default:
		return false
	}
}

// Release ends any interaction, wherever the pointer is.
func (c *Controller) Release() {
	c.state = Idle{}
}

// DoubleActivate selects clip index for editing. It does not touch the drag
// state.
func (c *Controller) DoubleActivate(index int) (timeline.Clip, error) {
	return c.clips.Select(index)
}

// PointerX converts a viewport x coordinate to a timeline-relative offset.
func PointerX(clientX, timelineLeft float64) float64 {
	return clientX - timelineLeft
}
