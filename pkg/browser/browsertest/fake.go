// Package browsertest provides an in-memory browser.Driver for tests.
package browsertest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dev/bravebird/login-e2e/pkg/browser"
)

// Fake is a scripted page. An xpath is "on the page" when it is a key of
// Present; its value is the element's text. Nothing ever waits: a missing
// element is reported immediately. Hidden elements are on the page but never
// satisfy a wait; Find still returns them.
type Fake struct {
	mu sync.Mutex

	Present map[string]string
	// Disabled xpaths are present but never clickable
	Disabled map[string]bool
	// Hidden xpaths are present but not visible
	Hidden map[string]bool
	// OnClick runs after a script click, e.g. to swap the page to a dashboard
	OnClick func(f *Fake, xpath string)

	NavigateErr   error
	ScreenshotErr error
	TypeErr       error

	Navigations []string
	Lookups     []string
	Typed       map[string]string
	Clicked     []string
	Screenshots []string
	Closed      bool
}

var _ browser.Driver = (*Fake)(nil)

// New creates a Fake with the given xpaths present, all with empty text
func New(xpaths ...string) *Fake {
	f := &Fake{
		Present:  make(map[string]string),
		Disabled: make(map[string]bool),
		Hidden:   make(map[string]bool),
		Typed:    make(map[string]string),
	}
	for _, x := range xpaths {
		f.Present[x] = ""
	}
	return f
}

// Launcher returns a launch function handing out f, recording the options
func (f *Fake) Launcher(got *browser.Options) func(context.Context, browser.Options) (browser.Driver, error) {
	return func(_ context.Context, opts browser.Options) (browser.Driver, error) {
		if got != nil {
			*got = opts
		}
		return f, nil
	}
}

// Set puts xpath on the page with text
func (f *Fake) Set(xpath, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Present[xpath] = text
}

// Hide puts xpath on the page with text, but not visible
func (f *Fake) Hide(xpath, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Present[xpath] = text
	f.Hidden[xpath] = true
}

// Remove takes xpath off the page
func (f *Fake) Remove(xpath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Present, xpath)
}

// Looked reports whether xpath was ever queried
func (f *Fake) Looked(xpath string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.Lookups {
		if l == xpath {
			return true
		}
	}
	return false
}

func (f *Fake) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	f.Navigations = append(f.Navigations, url)
	return nil
}

func (f *Fake) WaitVisible(ctx context.Context, xpath string, timeout time.Duration) (browser.Element, error) {
	return f.lookup(ctx, xpath, browser.ErrTimeout, f.visible)
}

func (f *Fake) WaitClickable(ctx context.Context, xpath string, timeout time.Duration) (browser.Element, error) {
	return f.lookup(ctx, xpath, browser.ErrTimeout, f.clickable)
}

func (f *Fake) Find(ctx context.Context, xpath string) (browser.Element, error) {
	return f.lookup(ctx, xpath, browser.ErrNotFound, f.present)
}

func (f *Fake) WaitAny(ctx context.Context, timeout time.Duration, xpaths ...string) (int, browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return -1, nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, x := range xpaths {
		f.Lookups = append(f.Lookups, x)
		if f.visible(x) {
			return i, &element{f: f, xpath: x}, nil
		}
	}
	return -1, nil, fmt.Errorf("%w after %s", browser.ErrTimeout, timeout)
}

func (f *Fake) Screenshot(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ScreenshotErr != nil {
		return f.ScreenshotErr
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, pixel(), 0644); err != nil {
		return err
	}
	f.Screenshots = append(f.Screenshots, path)
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func (f *Fake) lookup(ctx context.Context, xpath string, missing error, ready func(string) bool) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lookups = append(f.Lookups, xpath)
	if !ready(xpath) {
		return nil, fmt.Errorf("%w: %s", missing, xpath)
	}
	return &element{f: f, xpath: xpath}, nil
}

// present, visible and clickable expect f.mu to be held

func (f *Fake) present(xpath string) bool {
	_, ok := f.Present[xpath]
	return ok
}

func (f *Fake) visible(xpath string) bool {
	return f.present(xpath) && !f.Hidden[xpath]
}

func (f *Fake) clickable(xpath string) bool {
	return f.visible(xpath) && !f.Disabled[xpath]
}

type element struct {
	f     *Fake
	xpath string
}

func (e *element) Clear(context.Context) error {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	e.f.Typed[e.xpath] = ""
	return nil
}

func (e *element) Type(_ context.Context, text string) error {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	if e.f.TypeErr != nil {
		return e.f.TypeErr
	}
	e.f.Typed[e.xpath] += text
	return nil
}

func (e *element) ClickScript(context.Context) error {
	e.f.mu.Lock()
	e.f.Clicked = append(e.f.Clicked, e.xpath)
	onClick := e.f.OnClick
	e.f.mu.Unlock()

	if onClick != nil {
		onClick(e.f, e.xpath)
	}
	return nil
}

func (e *element) Text(context.Context) (string, error) {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	return e.f.Present[e.xpath], nil
}

func pixel() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	return buf.Bytes()
}
