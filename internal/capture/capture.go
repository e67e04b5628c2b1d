// Package capture drives a headless browser against the asset server and
// persists every report card as a PNG image.
package capture

import (
	"context"
	"errors"
	"time"
)

// ErrServerStartTimeout is returned when the asset server does not report
// readiness within the configured bound.
var ErrServerStartTimeout = errors.New("server did not start in time")

// ErrServerExited is returned when the asset server stops before it reports
// readiness.
var ErrServerExited = errors.New("server exited before it was ready")

// Page is the part of a browser tab the driver needs. Every blocking method
// honours the deadline of its context.
type Page interface {
	// Navigate loads url and returns once the network is idle.
	Navigate(ctx context.Context, url string) error
	// WaitAttached waits until selector matches an element in the DOM.
	WaitAttached(ctx context.Context, selector string) error
	// WaitVisible waits until the element matched by selector is visible.
	WaitVisible(ctx context.Context, selector string) error
	// WaitText waits until the element with the given id has text other than
	// empty or placeholder.
	WaitText(ctx context.Context, id, placeholder string) error
	// Count returns the number of elements matching selector.
	Count(ctx context.Context, selector string) (int, error)
	// ShowOnly displays the index-th match of selector and hides the others.
	ShowOnly(ctx context.Context, selector string, index int) error
	// ElementScreenshot captures the index-th match of selector as PNG.
	ElementScreenshot(ctx context.Context, selector string, index int) ([]byte, error)
	// Screenshot captures the viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Browser opens pages of a fixed viewport size.
type Browser interface {
	NewPage(ctx context.Context, width, height int) (Page, error)
	Close() error
}

// BrowserLauncher starts a browser.
type BrowserLauncher interface {
	Open(ctx context.Context) (Browser, error)
}

// ServerHandle is a running asset server.
type ServerHandle interface {
	// Ready is closed once the server accepts connections.
	Ready() <-chan struct{}
	// URL is the base URL of the server. It is valid once Ready is closed.
	URL() string
	// Done is closed once the server has stopped, for whatever reason.
	Done() <-chan struct{}
	// Err is the error the server stopped with. It is valid once Done is closed.
	Err() error
	Stop() error
}

// Launcher starts an asset server on port.
type Launcher interface {
	Launch(ctx context.Context, port int) (ServerHandle, error)
}

// WaitResult is the outcome of a bounded wait.
type WaitResult int

const (
	// Ready means the awaited condition was met.
	Ready WaitResult = iota
	// TimedOutTolerated means the bound elapsed and the flow carries on.
	TimedOutTolerated
	// TimedOutFatal means the bound elapsed and the flow must fail.
	TimedOutFatal
)

func (r WaitResult) String() string {
	switch r {
	case Ready:
		return "ready"
	case TimedOutTolerated:
		return "timed out (tolerated)"
	case TimedOutFatal:
		return "timed out (fatal)"
	}
	return "unknown"
}

// State is a step of a capture run.
type State int

const (
	Start State = iota
	WaitingForServer
	Loading
	Capturing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case WaitingForServer:
		return "waiting-for-server"
	case Loading:
		return "loading"
	case Capturing:
		return "capturing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Options bounds and locates a capture run.
type Options struct {
	OutDir   string
	DataFile string
	Port     int

	ServerTimeout   time.Duration
	NavigateTimeout time.Duration
	SelectorTimeout time.Duration
	VisibleTimeout  time.Duration
	DataTimeout     time.Duration
	Settle          time.Duration
	StorySettle     time.Duration
}

// DefaultOptions returns the bounds used by the capture commands.
func DefaultOptions() Options {
	return Options{
		OutDir:          "web/out",
		DataFile:        "recap_2025.json",
		Port:            4173,
		ServerTimeout:   10 * time.Second,
		NavigateTimeout: 30 * time.Second,
		SelectorTimeout: 15 * time.Second,
		VisibleTimeout:  5 * time.Second,
		DataTimeout:     10 * time.Second,
		Settle:          time.Second,
		StorySettle:     1500 * time.Millisecond,
	}
}

// Result describes a finished run.
type Result struct {
	RunID     string
	State     State
	Artifacts []string
}
