package export

import (
	"fmt"
	"math"
	"strings"
)

// GenerateEDL renders clips as a CMX3600 edit decision list. Clips are laid
// back to back on the record side in the order given.
func GenerateEDL(clips []EDLClip, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	mode := "NON-DROP FRAME"
	if dropFrame(frameRate) {
		mode = "DROP FRAME"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\nFCM: %s\n\n", title, mode)

	var record float64
	for i, clip := range clips {
		next := record + clip.End - clip.Start
		fmt.Fprintf(&b, "%03d  %-8s %-5s C        %s %s %s %s\n", i+1, "AX", "V",
			Timecode(clip.Start, fps), Timecode(clip.End, fps),
			Timecode(record, fps), Timecode(next, fps))
		fmt.Fprintf(&b, "* FROM CLIP NAME:  %s\n", clip.Name)
		fmt.Fprintf(&b, "* MEDIA PATH:  %s\n", clip.MediaPath)
		record = next
	}
	return b.String()
}

func dropFrame(rate float64) bool {
	return math.Abs(rate-29.97) < 0.01 || math.Abs(rate-59.94) < 0.01
}

// Timecode formats seconds as HH:MM:SS:FF.
func Timecode(seconds float64, fps int) string {
	if seconds < 0 {
		seconds = 0
	}
	totalFrames := int(math.Round(seconds * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d", totalSeconds/3600, (totalSeconds/60)%60, totalSeconds%60, frames)
}

// ClipName is the default name of the n-th clip (zero based) of a media file.
func ClipName(filename string, n int) string {
	base := strings.TrimSuffix(filename, extOf(filename))
	return SanitizeName(fmt.Sprintf("%s_clip_%03d", base, n+1), 160)
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}
