package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// paper dimensions in inches, as PrintToPDF expects.
var paperSizes = map[string][2]float64{
	"A4": {8.27, 11.69},
	"A5": {5.83, 8.27},
	"B5": {6.93, 9.84},
}

// Session owns the one browser instance shared by all requests. Starting a
// browser is expensive, so the process keeps a single session alive and each
// render opens its own tab inside it. The tab is closed on every exit path;
// the browser itself is restarted if it has died since the last render.
type Session struct {
	mu          sync.Mutex
	allocCtx    context.Context
	allocStop   context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
}

// NewSession starts the shared headless browser
func NewSession(ctx context.Context) (*Session, error) {
	s := &Session{}
	if err := s.start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
	)
	s.allocCtx, s.allocStop = chromedp.NewExecAllocator(ctx, opts...)
	s.browserCtx, s.browserStop = chromedp.NewContext(s.allocCtx)

	// Force the browser to actually launch so a broken environment fails at
	// startup instead of on the first request.
	if err := chromedp.Run(s.browserCtx); err != nil {
		s.stopLocked()
		return fmt.Errorf("failed to start browser: %w", err)
	}
	return nil
}

// acquireBrowser returns a healthy browser context, restarting the browser
// if the previous one has died.
func (s *Session) acquireBrowser() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx != nil && s.browserCtx.Err() == nil {
		return s.browserCtx, nil
	}

	log.Warn().Msg("Browser session lost, restarting")
	s.stopLocked()
	if err := s.start(context.Background()); err != nil {
		return nil, err
	}
	return s.browserCtx, nil
}

// RenderPDF converts a complete HTML page into PDF bytes using a fresh tab.
// The tab lives for exactly one render; cancellation of the caller's request
// does not abort a render already running in the browser.
func (s *Session) RenderPDF(ctx context.Context, htmlPage string, paperSize string) ([]byte, error) {
	browser, err := s.acquireBrowser()
	if err != nil {
		return nil, err
	}

	size, ok := paperSizes[paperSize]
	if !ok {
		size = paperSizes["A4"]
	}

	tab, closeTab := chromedp.NewContext(browser)
	defer closeTab()

	var pdf []byte
	err = chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, htmlPage).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(size[0]).
				WithPaperHeight(size[1]).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf, nil
}

// Healthy reports whether the shared browser is still alive
func (s *Session) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browserCtx != nil && s.browserCtx.Err() == nil
}

// Close shuts the shared browser down
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.browserStop != nil {
		s.browserStop()
		s.browserStop = nil
		s.browserCtx = nil
	}
	if s.allocStop != nil {
		s.allocStop()
		s.allocStop = nil
		s.allocCtx = nil
	}
}
