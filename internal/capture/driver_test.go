package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeHandle is a ServerHandle whose readiness is controlled by the test.
type fakeHandle struct {
	ready chan struct{}
	done  chan struct{}
	err   error
	mu    sync.Mutex
	stops int
}

func newFakeHandle(ready bool) *fakeHandle {
	h := &fakeHandle{ready: make(chan struct{}), done: make(chan struct{})}
	if ready {
		close(h.ready)
	}
	return h
}

func (h *fakeHandle) Ready() <-chan struct{} { return h.ready }
func (h *fakeHandle) URL() string { return "http://127.0.0.1:4173" }
func (h *fakeHandle) Done() <-chan struct{} { return h.done }
func (h *fakeHandle) Err() error { return h.err }
func (h *fakeHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
	return nil
}

type fakeLauncher struct {
	handle *fakeHandle
	err    error
	port   int
}

func (l *fakeLauncher) Launch(_ context.Context, port int) (ServerHandle, error) {
	l.port = port
	if l.err != nil {
		return nil, l.err
	}
	return l.handle, nil
}

// fakePage records calls and serves canned results. The block* fields make
// the corresponding wait run into its deadline.
type fakePage struct {
	cards        int
	blockAttach  bool
	blockText    bool
	blockVisible bool
	navigateErr  error

	url     string
	width   int
	height  int
	shown   []int
	visible []string
	closed  bool
}

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return fmt.Errorf("context done: %w", ctx.Err())
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.url = url
	return p.navigateErr
}

func (p *fakePage) WaitAttached(ctx context.Context, _ string) error {
	if p.blockAttach {
		return blockUntilDone(ctx)
	}
	return nil
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string) error {
	p.visible = append(p.visible, selector)
	if p.blockVisible {
		return blockUntilDone(ctx)
	}
	return nil
}

func (p *fakePage) WaitText(ctx context.Context, _, _ string) error {
	if p.blockText {
		return blockUntilDone(ctx)
	}
	return nil
}

func (p *fakePage) Count(context.Context, string) (int, error) { return p.cards, nil }

func (p *fakePage) ShowOnly(_ context.Context, _ string, index int) error {
	p.shown = append(p.shown, index)
	return nil
}

func (p *fakePage) ElementScreenshot(_ context.Context, _ string, index int) ([]byte, error) {
	return []byte(fmt.Sprintf("card %d", index)), nil
}

func (p *fakePage) Screenshot(context.Context) ([]byte, error) {
	return []byte(fmt.Sprintf("story %d", p.shown[len(p.shown)-1])), nil
}

func (p *fakePage) HTML(context.Context) (string, error) { return "<html>report</html>", nil }

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

type fakeBrowser struct {
	page   *fakePage
	opened bool
	closed bool
}

func (b *fakeBrowser) Open(context.Context) (Browser, error) {
	b.opened = true
	return b, nil
}

func (b *fakeBrowser) NewPage(_ context.Context, width, height int) (Page, error) {
	b.page.width, b.page.height = width, height
	return b.page, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

// exitedHandle is a server that stopped with err before becoming ready.
func exitedHandle(err error) *fakeHandle {
	h := newFakeHandle(false)
	h.err = err
	close(h.done)
	return h
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.OutDir = "/out"
	opts.ServerTimeout = 50 * time.Millisecond
	opts.SelectorTimeout = 20 * time.Millisecond
	opts.VisibleTimeout = 10 * time.Millisecond
	opts.DataTimeout = 10 * time.Millisecond
	opts.Settle = 0
	opts.StorySettle = 0
	return opts
}

func TestDriver_Cards(t *testing.T) {
	testCases := []struct {
		name          string
		handle        *fakeHandle
		launchErr     error
		page          *fakePage
		expectedErr   error
		errContains   string
		expectedFiles []string
		expectBrowser bool
	}{
		{
			name:          "happy path - every card and the html copy",
			handle:        newFakeHandle(true),
			page:          &fakePage{cards: 3},
			expectedFiles: []string{"/out/cards/card-01.png", "/out/cards/card-02.png", "/out/cards/card-03.png", "/out/report.html"},
			expectBrowser: true,
		},
		{
			name:        "server never ready",
			handle:      newFakeHandle(false),
			page:        &fakePage{cards: 3},
			expectedErr: ErrServerStartTimeout,
		},
		{
			name:        "server exits before ready",
			handle:      exitedHandle(errors.New("failed to listen on 127.0.0.1:4173: address already in use")),
			page:        &fakePage{cards: 3},
			expectedErr: ErrServerExited,
			errContains: "address already in use",
		},
		{
			name:        "server exits cleanly before ready",
			handle:      exitedHandle(nil),
			page:        &fakePage{cards: 3},
			expectedErr: ErrServerExited,
		},
		{
			name:          "cards never attach",
			handle:        newFakeHandle(true),
			page:          &fakePage{cards: 3, blockAttach: true},
			expectedErr:   context.DeadlineExceeded,
			errContains:   "timed out (fatal)",
			expectBrowser: true,
		},
		{
			name:          "navigation fails",
			handle:        newFakeHandle(true),
			page:          &fakePage{navigateErr: errors.New("net::ERR_CONNECTION_REFUSED")},
			errContains:   "ERR_CONNECTION_REFUSED",
			expectBrowser: true,
		},
		{
			name:        "server launch fails",
			launchErr:   errors.New("exec: not found"),
			page:        &fakePage{},
			errContains: "failed to launch server",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			launcher := &fakeLauncher{handle: tc.handle, err: tc.launchErr}
			browser := &fakeBrowser{page: tc.page}
			driver := NewDriver(launcher, browser, fs, testOptions(), zap.NewNop())

			res, err := driver.Cards(context.Background())

			if tc.expectedErr != nil || tc.errContains != "" {
				require.Error(t, err)
				if tc.expectedErr != nil {
					assert.ErrorIs(t, err, tc.expectedErr)
				}
				if tc.errContains != "" {
					assert.Contains(t, err.Error(), tc.errContains)
				}
				assert.Equal(t, Failed, res.State)
			} else {
				require.NoError(t, err)
				assert.Equal(t, Done, res.State)
				assert.Equal(t, tc.expectedFiles, res.Artifacts)
				assert.Equal(t, "http://127.0.0.1:4173/report.html?data=recap_2025.json", tc.page.url)
				assert.Equal(t, 1080, tc.page.width)
				assert.Equal(t, 1080, tc.page.height)

				data, err := afero.ReadFile(fs, "/out/cards/card-02.png")
				require.NoError(t, err)
				assert.Equal(t, "card 1", string(data))
			}

			assert.NotEmpty(t, res.RunID)
			assert.Equal(t, 4173, launcher.port)
			if tc.handle != nil {
				assert.Equal(t, 1, tc.handle.stops, "server must be stopped exactly once")
			}
			assert.Equal(t, tc.expectBrowser, browser.opened)
			assert.Equal(t, browser.opened, browser.closed)
		})
	}
}

func TestDriver_Story(t *testing.T) {
	t.Run("tolerated timeouts do not stop the capture", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		handle := newFakeHandle(true)
		page := &fakePage{cards: 3, blockText: true, blockVisible: true}
		browser := &fakeBrowser{page: page}
		opts := testOptions()
		opts.Port = 4174
		driver := NewDriver(&fakeLauncher{handle: handle}, browser, fs, opts, zap.NewNop())

		res, err := driver.Story(context.Background())

		require.NoError(t, err)
		assert.Equal(t, Done, res.State)
		assert.Equal(t, []string{"/out/instagram/story-01.png", "/out/instagram/story-02.png", "/out/instagram/story-03.png"}, res.Artifacts)
		assert.Equal(t, []int{0, 1, 2}, page.shown)
		assert.Equal(t, []string{"#card-01.story-card", "#card-02.story-card", "#card-03.story-card"}, page.visible)
		assert.True(t, strings.HasSuffix(page.url, "/report-story.html?data=recap_2025.json"))
		assert.Equal(t, 1080, page.width)
		assert.Equal(t, 1920, page.height)
		assert.Equal(t, 1, handle.stops)
		assert.True(t, page.closed)

		data, err := afero.ReadFile(fs, "/out/instagram/story-03.png")
		require.NoError(t, err)
		assert.Equal(t, "story 2", string(data))
	})

	t.Run("missing story cards are fatal", func(t *testing.T) {
		handle := newFakeHandle(true)
		driver := NewDriver(&fakeLauncher{handle: handle}, &fakeBrowser{page: &fakePage{blockAttach: true}},
			afero.NewMemMapFs(), testOptions(), zap.NewNop())

		res, err := driver.Story(context.Background())

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, Failed, res.State)
		assert.Empty(t, res.Artifacts)
		assert.Equal(t, 1, handle.stops)
	})

	t.Run("cancelled context", func(t *testing.T) {
		handle := newFakeHandle(false)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		opts := testOptions()
		opts.ServerTimeout = time.Minute
		driver := NewDriver(&fakeLauncher{handle: handle}, &fakeBrowser{page: &fakePage{}}, afero.NewMemMapFs(), opts, zap.NewNop())

		_, err := driver.Story(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, handle.stops)
	})
}

func TestRun_Wait(t *testing.T) {
	r := NewDriver(nil, nil, nil, testOptions(), zap.NewNop()).newRun("test")
	timeout := func(ctx context.Context) error { return blockUntilDone(ctx) }
	boom := errors.New("boom")

	testCases := []struct {
		name        string
		fn          func(context.Context) error
		fatal       bool
		expected    WaitResult
		expectedErr error
	}{
		{name: "condition met", fn: func(context.Context) error { return nil }, expected: Ready},
		{name: "tolerated timeout", fn: timeout, expected: TimedOutTolerated},
		{name: "fatal timeout", fn: timeout, fatal: true, expected: TimedOutFatal, expectedErr: context.DeadlineExceeded},
		{name: "other failure", fn: func(context.Context) error { return boom }, expected: TimedOutFatal, expectedErr: boom},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := r.wait(context.Background(), 5*time.Millisecond, tc.fatal, tc.fn)
			assert.Equal(t, tc.expected, res)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "waiting-for-server", WaitingForServer.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.Equal(t, "unknown", State(-1).String())
	assert.Equal(t, "unknown", WaitResult(9).String())
}

func TestReportURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:1/report.html", reportURL("http://127.0.0.1:1", "", ""))
	assert.Equal(t, "http://127.0.0.1:1/report-story.html?data=my+recap.json", reportURL("http://127.0.0.1:1", "story", "my recap.json"))
}
