package mouse

import (
	"fmt"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"github.com/ayusman/mudra/internal/gesture"
)

// ScreenBounds returns the size of the given display. When the display
// index is out of range or reports an empty rectangle it falls back to
// the main screen size as robotgo sees it.
func ScreenBounds(display int) (gesture.Dimensions, error) {
	if display >= 0 && display < screenshot.NumActiveDisplays() {
		bounds := screenshot.GetDisplayBounds(display)
		if bounds.Dx() > 0 && bounds.Dy() > 0 {
			return gesture.Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}, nil
		}
	}

	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return gesture.Dimensions{}, fmt.Errorf("no usable screen for display %d", display)
	}
	return gesture.Dimensions{Width: w, Height: h}, nil
}

// ResolveScreen returns the configured size when both dimensions are set,
// otherwise the detected size of display.
func ResolveScreen(width, height, display int) (gesture.Dimensions, error) {
	if width > 0 && height > 0 {
		return gesture.Dimensions{Width: width, Height: height}, nil
	}
	return ScreenBounds(display)
}
