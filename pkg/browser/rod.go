package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const pollInterval = 250 * time.Millisecond

// Rod is a Driver backed by a Chrome instance controlled through go-rod
type Rod struct {
	launcher    *launcher.Launcher
	browser     *rod.Browser
	page        *rod.Page
	loadTimeout time.Duration
}

var _ Driver = (*Rod)(nil)

// Launch starts a browser and opens a blank page. An explicit Bin must exist;
// otherwise the browser is looked up on the system and never downloaded.
func Launch(_ context.Context, opts Options) (Driver, error) {
	bin := opts.Bin
	if bin != "" {
		info, err := os.Stat(bin)
		if err != nil || info.IsDir() {
			return nil, fmt.Errorf("browser binary not found at %s", bin)
		}
	} else {
		found, ok := launcher.LookPath()
		if !ok {
			return nil, errors.New("no browser found on the system path")
		}
		bin = found
	}

	l := launcher.New().Bin(bin).Headless(opts.Headless)

	// Additional Chrome flags for container compatibility
	l = l.Set("no-sandbox")
	l = l.Set("disable-gpu")
	l = l.Set("disable-dev-shm-usage")

	if opts.Headless {
		l = l.Set("window-size", "1920,1080")
	} else {
		l = l.Set("start-maximized")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	loadTimeout := opts.PageLoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = DefaultPageLoadTimeout
	}

	return &Rod{launcher: l, browser: browser, page: page, loadTimeout: loadTimeout}, nil
}

func (r *Rod) Navigate(ctx context.Context, url string) error {
	loadCtx, cancel := context.WithTimeout(ctx, r.loadTimeout)
	defer cancel()

	p := r.page.Context(loadCtx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		if ctx.Err() == nil && loadCtx.Err() != nil {
			return fmt.Errorf("%s did not load within %s: %w", url, r.loadTimeout, err)
		}
		return fmt.Errorf("failed waiting for %s to load: %w", url, err)
	}
	return nil
}

func (r *Rod) WaitVisible(ctx context.Context, xpath string, timeout time.Duration) (Element, error) {
	_, el, err := r.waitFor(ctx, timeout, []string{xpath}, isVisible)
	return el, err
}

func (r *Rod) WaitClickable(ctx context.Context, xpath string, timeout time.Duration) (Element, error) {
	_, el, err := r.waitFor(ctx, timeout, []string{xpath}, isClickable)
	return el, err
}

func (r *Rod) WaitAny(ctx context.Context, timeout time.Duration, xpaths ...string) (int, Element, error) {
	return r.waitFor(ctx, timeout, xpaths, isVisible)
}

func (r *Rod) Find(ctx context.Context, xpath string) (Element, error) {
	els, err := r.page.Context(ctx).ElementsX(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", xpath, err)
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, xpath)
	}
	return &rodElement{el: els.First()}, nil
}

func (r *Rod) Screenshot(ctx context.Context, path string) error {
	data, err := r.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}
	return nil
}

func (r *Rod) Close() error {
	err := r.browser.Close()
	r.launcher.Kill()
	r.launcher.Cleanup()
	return err
}

// waitFor polls the page until one of xpaths yields an element accepted by
// ready. Locators are tried in order on every poll.
func (r *Rod) waitFor(ctx context.Context, timeout time.Duration, xpaths []string, ready func(*rod.Element) bool) (int, Element, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := r.page.Context(waitCtx)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		for i, xpath := range xpaths {
			els, err := p.ElementsX(xpath)
			if err != nil {
				if waitCtx.Err() != nil {
					break
				}
				return -1, nil, fmt.Errorf("failed to query %s: %w", xpath, err)
			}
			for _, el := range els {
				if ready(el) {
					return i, &rodElement{el: el}, nil
				}
			}
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return -1, nil, err
			}
			return -1, nil, fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, strings.Join(xpaths, " | "))
		case <-ticker.C:
		}
	}
}

func isVisible(el *rod.Element) bool {
	visible, err := el.Visible()
	return err == nil && visible
}

func isClickable(el *rod.Element) bool {
	if !isVisible(el) {
		return false
	}
	disabled, err := el.Property("disabled")
	return err == nil && !disabled.Bool()
}

// rodElement rebinds the context on every call because the element may have
// been located under a wait deadline that has since expired.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Clear(ctx context.Context) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to select text: %w", err)
	}
	return el.Input("")
}

func (e *rodElement) Type(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	return e.el.Context(ctx).Input(text)
}

func (e *rodElement) ClickScript(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(`() => this.click()`)
	return err
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
