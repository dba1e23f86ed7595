// Package playback serves uploaded media with byte-range support and tracks
// the playback position of the editor's video player.
package playback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRange  = errors.New("invalid range format")
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// ByteRange is an inclusive byte span of a media file.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

func (r ByteRange) ContentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, total)
}

// ParseRange reads the first span of a Range header. ok is false when the
// header is absent and the whole file should be sent.
func ParseRange(header string, size int64) (r ByteRange, ok bool, err error) {
	if header == "" {
		return ByteRange{}, false, nil
	}

	spec, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return ByteRange{}, false, ErrInvalidRange
	}
	if first, _, multi := strings.Cut(spec, ","); multi {
		spec = strings.TrimSpace(first)
	}

	from, to, found := strings.Cut(spec, "-")
	if !found {
		return ByteRange{}, false, ErrInvalidRange
	}

	if from == "" {
		// suffix form: the last n bytes
		n, err := strconv.ParseInt(to, 10, 64)
		if err != nil || n <= 0 {
			return ByteRange{}, false, ErrInvalidRange
		}
		r.Start = max(size-n, 0)
		r.End = size - 1
	} else {
		r.Start, err = strconv.ParseInt(from, 10, 64)
		if err != nil || r.Start < 0 {
			return ByteRange{}, false, ErrInvalidRange
		}
		r.End = size - 1
		if to != "" {
			r.End, err = strconv.ParseInt(to, 10, 64)
			if err != nil {
				return ByteRange{}, false, ErrInvalidRange
			}
		}
	}

	if r.Start > r.End || r.Start >= size {
		return ByteRange{}, false, ErrUnsatisfiable
	}
	r.End = min(r.End, size-1)
	return r, true, nil
}
