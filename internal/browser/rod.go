// Package browser adapts go-rod to the page interface of the capture driver.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-recap/internal/capture"
)

// idleWindow is how long the network must stay quiet to count as idle.
const idleWindow = 500 * time.Millisecond

const showOnlyJS = `(selector, index) => {
	document.querySelectorAll(selector).forEach((card, i) => {
		const shown = i === index;
		card.style.display = shown ? "flex" : "none";
		card.style.visibility = shown ? "visible" : "hidden";
	});
}`

const populatedJS = `(id, placeholder) => {
	const el = document.getElementById(id);
	return !!el && el.textContent !== placeholder && el.textContent !== "";
}`

const countJS = `(selector) => document.querySelectorAll(selector).length`

var (
	_ capture.BrowserLauncher = (*Launcher)(nil)
	_ capture.Browser         = (*Browser)(nil)
	_ capture.Page            = (*Page)(nil)
)

// Config selects the browser binary and mode.
type Config struct {
	Headless bool
	Bin      string // empty lets rod locate or download a browser
}

// Launcher starts Chromium through rod's launcher.
type Launcher struct {
	cfg    Config
	logger *zap.Logger
}

// NewLauncher creates a new Launcher instance.
func NewLauncher(cfg Config, logger *zap.Logger) *Launcher {
	return &Launcher{cfg: cfg, logger: logger}
}

// Open launches a browser process and connects to it.
func (l *Launcher) Open(ctx context.Context) (capture.Browser, error) {
	ln := launcher.New().Context(ctx).Headless(l.cfg.Headless)
	if l.cfg.Bin != "" {
		ln = ln.Bin(l.cfg.Bin)
	}
	controlURL, err := ln.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	l.logger.Debug("browser launched", zap.String("control_url", controlURL))

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		ln.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return &Browser{browser: b, launcher: ln}, nil
}

// Browser is a connected rod browser.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewPage opens a blank page with a width x height viewport.
func (b *Browser) NewPage(ctx context.Context, width, height int) (capture.Page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}
	return &Page{page: p}, nil
}

// Close disconnects and kills the browser process.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}

// Page is a rod page.
type Page struct {
	page *rod.Page
}

func (p *Page) with(ctx context.Context) *rod.Page {
	return p.page.Context(ctx)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.with(ctx)
	idle := page.WaitRequestIdle(idleWindow, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return err
	}
	idle()
	return ctx.Err()
}

func (p *Page) WaitAttached(ctx context.Context, selector string) error {
	_, err := p.with(ctx).Element(selector)
	return err
}

func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	el, err := p.with(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (p *Page) WaitText(ctx context.Context, id, placeholder string) error {
	return p.with(ctx).Wait(rod.Eval(populatedJS, id, placeholder))
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	res, err := p.with(ctx).Eval(countJS, selector)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *Page) ShowOnly(ctx context.Context, selector string, index int) error {
	_, err := p.with(ctx).Eval(showOnlyJS, selector, index)
	return err
}

func (p *Page) ElementScreenshot(ctx context.Context, selector string, index int) ([]byte, error) {
	els, err := p.with(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(els) {
		return nil, fmt.Errorf("no element %d for %s", index, selector)
	}
	return els[index].Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	return p.with(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.with(ctx).HTML()
}

func (p *Page) Close() error {
	return p.page.Close()
}
