// Package browser is the narrow set of browser capabilities the login flow
// needs. Locators are XPath expressions.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Find when nothing matches the locator
	ErrNotFound = errors.New("element not found")
	// ErrTimeout is returned when a wait expires before the condition holds
	ErrTimeout = errors.New("timed out waiting for element")
)

// Driver drives a single browser page
type Driver interface {
	// Navigate loads url and waits for the load event, at most the page load timeout
	Navigate(ctx context.Context, url string) error
	// WaitVisible waits up to timeout for an element matching xpath to be visible
	WaitVisible(ctx context.Context, xpath string, timeout time.Duration) (Element, error)
	// WaitClickable waits up to timeout for a visible, enabled element matching xpath
	WaitClickable(ctx context.Context, xpath string, timeout time.Duration) (Element, error)
	// Find returns the first element matching xpath without waiting
	Find(ctx context.Context, xpath string) (Element, error)
	// WaitAny waits up to timeout for any of xpaths to match and returns the
	// index of the locator that matched. Earlier locators win ties.
	WaitAny(ctx context.Context, timeout time.Duration, xpaths ...string) (int, Element, error)
	// Screenshot writes a PNG of the current viewport to path
	Screenshot(ctx context.Context, path string) error
	// Close tears down the browser
	Close() error
}

// Element is a located page element
type Element interface {
	Clear(ctx context.Context) error
	Type(ctx context.Context, text string) error
	// ClickScript clicks through a script call, which works for custom
	// buttons and elements hidden behind overlays.
	ClickScript(ctx context.Context) error
	Text(ctx context.Context) (string, error)
}

// DefaultPageLoadTimeout bounds Navigate when Options leaves it unset
const DefaultPageLoadTimeout = 30 * time.Second

// Options configures how the browser is launched
type Options struct {
	// Bin is an explicit browser binary. Empty means look it up on the system.
	Bin      string
	Headless bool
	// PageLoadTimeout bounds the wait for the load event in Navigate
	PageLoadTimeout time.Duration
}

// IsMissing reports whether err means the element was not there in time.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrTimeout)
}
