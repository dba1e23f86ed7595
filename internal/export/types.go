package export

// Range is one clip of an export, in seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r Range) Duration() float64 {
	return r.End - r.Start
}

// EDLClip is a range resolved against the media it was cut from.
type EDLClip struct {
	Name      string
	MediaPath string
	Start     float64
	End       float64
}
