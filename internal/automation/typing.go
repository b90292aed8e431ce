package automation

import (
	"context"
	"time"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
)

// DefaultStringDelay is the pause between characters in SendString and
// PostString.
const DefaultStringDelay = 10 * time.Millisecond

// SendString types text one UTF-16 unit at a time with SendChar semantics,
// pausing delay between units. It reports whether at least one unit was
// delivered. Cancelling ctx stops typing between units.
func (f *Facade) SendString(ctx context.Context, h platform.WindowHandle, text string, delay time.Duration) bool {
	return f.typeText(ctx, h, text, delay, false)
}

// PostString is SendString using PostChar semantics.
func (f *Facade) PostString(ctx context.Context, h platform.WindowHandle, text string, delay time.Duration) bool {
	return f.typeText(ctx, h, text, delay, true)
}

func (f *Facade) typeText(ctx context.Context, h platform.WindowHandle, text string, delay time.Duration, post bool) bool {
	units := encodeText(text)
	delivered := 0
	for i, unit := range units {
		if ctx.Err() != nil {
			break
		}
		if f.charUnit(h, unit, post) == CodeOK {
			delivered++
		}
		if i < len(units)-1 && delay > 0 {
			if err := f.sleep(ctx, delay); err != nil {
				break
			}
		}
	}
	return delivered > 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
