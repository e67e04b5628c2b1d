package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-recap/internal/report"
)

const (
	cardSelector      = ".card"
	storyCardSelector = ".story-card"
	populatedID       = report.SlotCommits
	placeholder       = "—"

	cardsDir = "cards"
	storyDir = "instagram"
	htmlCopy = "report.html"

	dashboardSize = 1080
	storyWidth    = 1080
	storyHeight   = 1920
)

// Driver runs capture flows.
type Driver struct {
	launcher Launcher
	browsers BrowserLauncher
	fs       afero.Fs
	opts     Options
	logger   *zap.Logger
}

// NewDriver creates a new Driver instance.
func NewDriver(launcher Launcher, browsers BrowserLauncher, fs afero.Fs, opts Options, logger *zap.Logger) *Driver {
	return &Driver{
		launcher: launcher,
		browsers: browsers,
		fs:       fs,
		opts:     opts,
		logger:   logger,
	}
}

// run is the state of one capture flow.
type run struct {
	*Driver
	id        string
	state     State
	logger    *zap.Logger
	artifacts []string
}

func (d *Driver) newRun(flow string) *run {
	id := uuid.NewString()
	return &run{
		Driver: d,
		id:     id,
		logger: d.logger.With(zap.String("run", id), zap.String("flow", flow)),
	}
}

func (r *run) enter(s State) {
	r.state = s
	r.logger.Debug("state", zap.Stringer("state", s))
}

func (r *run) result() Result {
	return Result{RunID: r.id, State: r.state, Artifacts: r.artifacts}
}

// Cards screenshots every dashboard card to cards/card-NN.png and saves a copy
// of the rendered page as report.html.
func (d *Driver) Cards(ctx context.Context) (Result, error) {
	r := d.newRun("cards")
	err := r.session(ctx, report.Dashboard, dashboardSize, dashboardSize, r.cards)
	return r.finish(err)
}

// Story shows the story cards one at a time and captures the viewport to
// instagram/story-NN.png.
func (d *Driver) Story(ctx context.Context) (Result, error) {
	r := d.newRun("story")
	err := r.session(ctx, report.Story, storyWidth, storyHeight, r.story)
	return r.finish(err)
}

func (r *run) finish(err error) (Result, error) {
	if err != nil {
		r.enter(Failed)
		return r.result(), err
	}
	r.enter(Done)
	r.logger.Info("capture complete", zap.Int("artifacts", len(r.artifacts)))
	return r.result(), nil
}

// session owns the server handle and the browser for the duration of capture.
func (r *run) session(ctx context.Context, variant report.Variant, width, height int, capture func(context.Context, Page) error) error {
	r.enter(Start)
	handle, err := r.launcher.Launch(ctx, r.opts.Port)
	if err != nil {
		return fmt.Errorf("failed to launch server: %w", err)
	}
	var once sync.Once
	stop := func() {
		once.Do(func() {
			if err := handle.Stop(); err != nil {
				r.logger.Warn("failed to stop server", zap.Error(err))
			}
		})
	}
	defer stop()

	r.enter(WaitingForServer)
	if res, err := r.waitReady(ctx, handle); res != Ready {
		return err
	}

	browser, err := r.browsers.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Warn("failed to close browser", zap.Error(err))
		}
	}()

	page, err := browser.NewPage(ctx, width, height)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	r.enter(Loading)
	target := reportURL(handle.URL(), variant, r.opts.DataFile)
	r.logger.Debug("navigating", zap.String("url", target))
	if res, err := r.wait(ctx, r.opts.NavigateTimeout, true, func(ctx context.Context) error {
		return page.Navigate(ctx, target)
	}); err != nil {
		return fmt.Errorf("failed to load %s (%s): %w", target, res, err)
	}

	return capture(ctx, page)
}

func (r *run) waitReady(ctx context.Context, handle ServerHandle) (WaitResult, error) {
	timer := time.NewTimer(r.opts.ServerTimeout)
	defer timer.Stop()
	select {
	case <-handle.Ready():
		r.logger.Debug("server ready", zap.String("url", handle.URL()))
		return Ready, nil
	case <-timer.C:
		r.logger.Error("server did not report readiness", zap.Duration("timeout", r.opts.ServerTimeout))
		return TimedOutFatal, ErrServerStartTimeout
	case <-handle.Done():
		select {
		case <-handle.Ready():
			return Ready, nil
		default:
		}
		err := ErrServerExited
		if cause := handle.Err(); cause != nil {
			err = fmt.Errorf("%w: %w", ErrServerExited, cause)
		}
		r.logger.Error("server stopped before reporting readiness", zap.Error(err))
		return TimedOutFatal, err
	case <-ctx.Done():
		return TimedOutFatal, ctx.Err()
	}
}

// wait runs fn under timeout. A timeout is an error only when fatal is set.
func (r *run) wait(ctx context.Context, timeout time.Duration, fatal bool, fn func(context.Context) error) (WaitResult, error) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(wctx)
	switch {
	case err == nil:
		return Ready, nil
	case ctx.Err() != nil:
		return TimedOutFatal, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded) || wctx.Err() != nil:
		if fatal {
			return TimedOutFatal, err
		}
		return TimedOutTolerated, nil
	default:
		return TimedOutFatal, err
	}
}

func (r *run) cards(ctx context.Context, page Page) error {
	if res, err := r.wait(ctx, r.opts.SelectorTimeout, true, func(ctx context.Context) error {
		return page.WaitAttached(ctx, cardSelector)
	}); err != nil {
		return fmt.Errorf("failed to find %s (%s): %w", cardSelector, res, err)
	}

	r.enter(Capturing)
	n, err := page.Count(ctx, cardSelector)
	if err != nil {
		return fmt.Errorf("failed to count cards: %w", err)
	}
	for i := 0; i < n; i++ {
		png, err := page.ElementScreenshot(ctx, cardSelector, i)
		if err != nil {
			return fmt.Errorf("failed to capture card %d: %w", i+1, err)
		}
		if err := r.write(filepath.Join(cardsDir, fmt.Sprintf("card-%02d.png", i+1)), png); err != nil {
			return err
		}
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("failed to read page html: %w", err)
	}
	return r.write(htmlCopy, []byte(html))
}

func (r *run) story(ctx context.Context, page Page) error {
	if res, err := r.wait(ctx, r.opts.SelectorTimeout, true, func(ctx context.Context) error {
		return page.WaitAttached(ctx, storyCardSelector)
	}); err != nil {
		return fmt.Errorf("failed to find %s (%s): %w", storyCardSelector, res, err)
	}

	res, err := r.wait(ctx, r.opts.DataTimeout, false, func(ctx context.Context) error {
		return page.WaitText(ctx, populatedID, placeholder)
	})
	if err != nil {
		return err
	}
	if res == TimedOutTolerated {
		r.logger.Warn("data might not be fully loaded, continuing anyway")
	}
	if err := sleep(ctx, r.opts.Settle); err != nil {
		return err
	}

	r.enter(Capturing)
	n, err := page.Count(ctx, storyCardSelector)
	if err != nil {
		return fmt.Errorf("failed to count story cards: %w", err)
	}
	r.logger.Info("found story cards", zap.Int("count", n))

	for i := 0; i < n; i++ {
		if err := page.ShowOnly(ctx, storyCardSelector, i); err != nil {
			return fmt.Errorf("failed to show card %d: %w", i+1, err)
		}
		sel := fmt.Sprintf("#card-%02d%s", i+1, storyCardSelector)
		res, err := r.wait(ctx, r.opts.VisibleTimeout, false, func(ctx context.Context) error {
			return page.WaitVisible(ctx, sel)
		})
		if err != nil {
			return err
		}
		if res == TimedOutTolerated {
			r.logger.Warn("card might not be visible, continuing anyway", zap.Int("card", i+1))
		}
		if err := sleep(ctx, r.opts.StorySettle); err != nil {
			return err
		}

		png, err := page.Screenshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to capture story card %d: %w", i+1, err)
		}
		if err := r.write(filepath.Join(storyDir, fmt.Sprintf("story-%02d.png", i+1)), png); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) write(name string, data []byte) error {
	p := filepath.Join(r.opts.OutDir, name)
	if err := r.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(p), err)
	}
	if err := afero.WriteFile(r.fs, p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	r.artifacts = append(r.artifacts, p)
	r.logger.Info("wrote artifact", zap.String("path", p), zap.String("size", humanize.Bytes(uint64(len(data)))))
	return nil
}

func reportURL(base string, variant report.Variant, data string) string {
	q := url.Values{}
	if data != "" {
		q.Set("data", data)
	}
	u := base + "/" + variant.Document()
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
