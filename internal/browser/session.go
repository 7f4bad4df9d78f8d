// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/internal/config"
)

// Session owns one headless browser tab for the duration of a run. The page
// it holds is the single piece of mutable shared state in the system: the
// executor mutates it, the snapshot provider only reads it, and nothing else
// touches it.
type Session struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	tabCtx          context.Context
	tabCancel       context.CancelFunc

	mu       sync.Mutex
	isClosed bool
}

// NewSession launches the browser process and opens the working tab.
func NewSession(ctx context.Context, logger *zap.Logger, cfg config.BrowserConfig) (*Session, error) {
	s := &Session{
		logger: logger.Named("browser_session"),
		cfg:    cfg,
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, s.buildAllocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Force the browser to actually start so launch failures surface here
	// rather than on the first real action.
	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s.allocatorCtx = allocCtx
	s.allocatorCancel = allocCancel
	s.tabCtx = tabCtx
	s.tabCancel = tabCancel

	s.logger.Info("Browser session started", zap.Bool("headless", cfg.Headless))
	return s, nil
}

func (s *Session) buildAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", s.cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", s.cfg.Headless),
	)

	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	// Pass-through for raw --flag or --flag=value entries from config.
	for _, arg := range s.cfg.Args {
		name := strings.TrimPrefix(arg, "--")
		if parts := strings.SplitN(name, "=", 2); len(parts) == 2 {
			opts = append(opts, chromedp.Flag(parts[0], parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}
	return opts
}

// Run executes chromedp actions against the tab, honoring both the session
// lifetime and the caller's context.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return fmt.Errorf("browser session is closed")
	}
	tabCtx := s.tabCtx
	s.mu.Unlock()

	runCtx, cancel := combineContext(tabCtx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Close tears the tab and browser process down. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return
	}
	s.isClosed = true

	s.logger.Debug("Closing browser session.")
	if s.tabCancel != nil {
		s.tabCancel()
	}
	if s.allocatorCancel != nil {
		s.allocatorCancel()
	}
}

// combineContext derives a context from primary that is additionally
// cancelled when secondary is.
func combineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(primary)
	stop := context.AfterFunc(secondary, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
