package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"bmctest/internal/config"
)

const (
	windowWidth  = 1920
	windowHeight = 1080
)

// Options configures the headless browser
type Options struct {
	ExecPath string
	Timeout  time.Duration
	Headful  bool
}

// OptionsFromConfig builds browser options from the run configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ExecPath: cfg.GetChromePath(),
		Timeout:  cfg.Timeout,
	}
}

// Session is one browser tab shared by the web console checks
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	logger      *zap.Logger
}

// Open starts the browser and waits until its first tab is usable.
// Close must be called on success.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.IgnoreCertErrors,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(windowWidth, windowHeight),
	)
	if opts.Headful {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Debugf),
	)

	s := &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		timeout:     opts.Timeout,
		logger:      logger,
	}
	if s.timeout <= 0 {
		s.timeout = config.DefaultTimeout
	}

	// An empty Run starts the browser process
	if err := s.run(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	logger.Debug("browser started", zap.String("exec_path", opts.ExecPath))
	return s, nil
}

// Close shuts down the tab and the browser process
func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
	s.logger.Debug("browser closed")
}

// Navigate opens url and waits for the document body
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Page returns a snapshot of the rendered DOM
func (s *Session) Page(ctx context.Context) (*Page, error) {
	var doc string
	if err := s.run(ctx, chromedp.OuterHTML("html", &doc, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return ParsePage(doc)
}

// Type clears the input matched by the CSS selector and types text into it
func (s *Session) Type(ctx context.Context, selector, text string) error {
	return s.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

// ClickButton clicks the first button whose text contains one of labels
func (s *Session) ClickButton(ctx context.Context, labels ...string) error {
	return s.run(ctx, chromedp.Click(buttonXPath(labels), chromedp.BySearch))
}

// Location returns the current URL
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// Screenshot saves a full-page PNG to path
func (s *Session) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

// run executes actions in the tab, bounded by the session timeout and by ctx
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func buttonXPath(labels []string) string {
	conds := make([]string, 0, len(labels))
	for _, l := range labels {
		conds = append(conds, fmt.Sprintf("contains(normalize-space(.), %s)", xpathLiteral(l)))
	}
	return "//button[" + strings.Join(conds, " or ") + "]"
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(quoted, `, "'", `) + ")"
}
