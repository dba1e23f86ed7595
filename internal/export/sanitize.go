package export

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

var ErrNoRanges = errors.New("clips must not be empty")

// SanitizeName makes s safe to use as a file or clip name. Control
// characters are dropped, anything else outside letters, digits and
// " -_.,()" becomes '_', and the result is cut to maxLen runes.
func SanitizeName(s string, maxLen int) string {
	cleaned := strings.TrimSpace(strings.Map(nameRune, s))
	if maxLen <= 0 {
		return cleaned
	}
	if runes := []rune(cleaned); len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return cleaned
}

func nameRune(r rune) rune {
	switch {
	case unicode.IsControl(r):
		return -1
	case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(" -_.,()", r):
		return r
	}
	return '_'
}

// ValidateRanges checks an export's clip list: it must be non-empty and each
// range must satisfy 0 <= start < end.
func ValidateRanges(ranges []Range) error {
	if len(ranges) == 0 {
		return ErrNoRanges
	}
	for i, r := range ranges {
		if math.IsNaN(r.Start) || math.IsNaN(r.End) || r.Start < 0 || r.Start >= r.End {
			return fmt.Errorf("clip %d: start must be less than end (got %v-%v)", i, r.Start, r.End)
		}
	}
	return nil
}
