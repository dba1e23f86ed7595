// Package timeline holds the clip editing model: the pixel/time mapping of the
// timeline strip and the ordered collection of clip ranges.
package timeline

import (
	"fmt"
	"math"
)

// DefaultPixelsPerSecond is the timeline scale used by the editor front-end.
const DefaultPixelsPerSecond = 10

// Axis maps pixel offsets on the timeline to whole seconds and back.
type Axis struct {
	pps float64
}

// NewAxis returns an Axis with the given scale. Non-positive scales fall back
// to DefaultPixelsPerSecond.
func NewAxis(pixelsPerSecond float64) Axis {
	if pixelsPerSecond <= 0 || math.IsNaN(pixelsPerSecond) || math.IsInf(pixelsPerSecond, 0) {
		pixelsPerSecond = DefaultPixelsPerSecond
	}
	return Axis{pps: pixelsPerSecond}
}

func (a Axis) PixelsPerSecond() float64 {
	if a.pps <= 0 {
		return DefaultPixelsPerSecond
	}
	return a.pps
}

// TimeFromPixels returns floor(p / pps), never negative.
func (a Axis) TimeFromPixels(p float64) float64 {
	t := math.Floor(p / a.PixelsPerSecond())
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	return t
}

func (a Axis) PixelsFromTime(t float64) float64 {
	return t * a.PixelsPerSecond()
}

// Label renders a whole second as MM:SS the way the timeline ruler shows it.
// Minutes wrap at one hour.
func Label(second int) string {
	if second < 0 {
		second = 0
	}
	return fmt.Sprintf("%02d:%02d", (second/60)%60, second%60)
}

// Ticks returns one ruler label per thumbnail slot.
func Ticks(n int) []string {
	if n <= 0 {
		return []string{}
	}
	labels := make([]string, n)
	for i := range labels {
		labels[i] = Label(i)
	}
	return labels
}
