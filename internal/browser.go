package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const defaultActionTimeout = 30 * time.Second

// BrowserSession drives one chat client tab through the Chrome DevTools
// protocol. It implements PageSource and Paginator.
type BrowserSession struct {
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	tabCtx        context.Context
	tabCancel     context.CancelFunc
	timeout       time.Duration
}

type snapshotResult struct {
	HTML  string `json:"html"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type scrollResult struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	AtEnd  bool    `json:"atEnd"`
}

// NewBrowserSession connects to cfg.RemoteURL when set, otherwise launches a
// local Chrome. When pageURL is non-empty the tab navigates there.
func NewBrowserSession(cfg BrowserConfig, pageURL string) (*BrowserSession, error) {
	s := &BrowserSession{timeout: defaultActionTimeout}

	var allocCtx context.Context
	if cfg.RemoteURL != "" {
		allocCtx, s.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		LogInfo("Connecting to browser at %s", cfg.RemoteURL)
	} else {
		opts := make([]chromedp.ExecAllocatorOption, len(chromedp.DefaultExecAllocatorOptions))
		copy(opts, chromedp.DefaultExecAllocatorOptions[:])
		opts = append(opts,
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(1440, 900),
		)
		if cfg.ChromePath != "" {
			opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
		}
		allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		LogInfo("Launching local browser (headless=%v)", cfg.Headless)
	}

	var browserCtx context.Context
	browserCtx, s.browserCancel = chromedp.NewContext(allocCtx)
	s.tabCtx, s.tabCancel = chromedp.NewContext(browserCtx)

	// The first Run binds the session to tabCtx, so it must not carry a
	// derived timeout.
	startDone := make(chan error, 1)
	go func() { startDone <- chromedp.Run(s.tabCtx) }()
	select {
	case err := <-startDone:
		if err != nil {
			s.Close()
			return nil, &SnapshotError{Source: cfg.RemoteURL, Op: "capture", Err: fmt.Errorf("start browser: %w", err)}
		}
	case <-time.After(s.timeout):
		s.Close()
		return nil, &SnapshotError{Source: cfg.RemoteURL, Op: "capture", Err: fmt.Errorf("start browser: timed out after %v", s.timeout)}
	}

	if pageURL != "" {
		if err := s.Navigate(context.Background(), pageURL); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Navigate loads url and waits for the body to be ready
func (s *BrowserSession) Navigate(ctx context.Context, url string) error {
	tctx, cancel := s.actionContext(ctx)
	defer cancel()

	if err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	); err != nil {
		return &SnapshotError{Source: url, Op: "capture", Err: fmt.Errorf("navigate: %w", err)}
	}
	LogDebug("Navigated to %s", url)
	return nil
}

// Snapshot captures a detached, geometry-annotated copy of the page
func (s *BrowserSession) Snapshot(ctx context.Context) (*Page, error) {
	tctx, cancel := s.actionContext(ctx)
	defer cancel()

	var res snapshotResult
	if err := chromedp.Run(tctx, chromedp.Evaluate(buildSnapshotJS(), &res, awaitPromise)); err != nil {
		return nil, &SnapshotError{Source: "browser", Op: "capture", Err: err}
	}
	page, err := NewPageFromHTML(strings.NewReader(res.HTML), res.URL)
	if err != nil {
		return nil, err
	}
	if page.Title == "" {
		page.Title = res.Title
	}
	return page, nil
}

// Advance scrolls the thread panel by one pagination step
func (s *BrowserSession) Advance(ctx context.Context, step, floor int) (ScrollResult, error) {
	js, err := buildScrollJS(step, floor)
	if err != nil {
		return ScrollResult{}, err
	}

	tctx, cancel := s.actionContext(ctx)
	defer cancel()

	var res scrollResult
	if err := chromedp.Run(tctx, chromedp.Evaluate(js, &res)); err != nil {
		return ScrollResult{}, err
	}
	return ScrollResult{Before: res.Before, After: res.After, AtEnd: res.AtEnd}, nil
}

// actionContext derives a per-action timeout from the tab context, also
// ending when ctx is done
func (s *BrowserSession) actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(s.tabCtx, s.timeout)
	stop := context.AfterFunc(ctx, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}

// Close shuts down the tab and the browser connection
func (s *BrowserSession) Close() {
	if s.tabCancel != nil {
		s.tabCancel()
	}
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}
