package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-recap/internal/server"
)

// ProcessLauncher runs the asset server as a child process and treats the
// first readiness line on its stdout as the ready signal.
type ProcessLauncher struct {
	Executable string   // defaults to the running binary
	Args       []string // arguments that start the server, e.g. "serve"
	Env        []string // extra environment, appended to os.Environ
	Logger     *zap.Logger
}

// Launch starts the child with PORT set to port.
func (l *ProcessLauncher) Launch(_ context.Context, port int) (ServerHandle, error) {
	exe := l.Executable
	if exe == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate executable: %w", err)
		}
		exe = self
	}

	cmd := exec.Command(exe, l.Args...)
	cmd.Env = append(append(os.Environ(), l.Env...), "PORT="+strconv.Itoa(port))
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach to server output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start server: %w", err)
	}

	h := &processHandle{
		cmd:     cmd,
		url:     server.BaseURL(port),
		ready:   make(chan struct{}),
		drained: make(chan struct{}),
		exited:  make(chan struct{}),
		logger:  l.Logger,
	}
	go h.watch(stdout)
	go h.wait()
	return h, nil
}

type processHandle struct {
	cmd     *exec.Cmd
	url     string
	ready   chan struct{}
	drained chan struct{}
	exited  chan struct{}
	err     error
	logger  *zap.Logger
}

func (h *processHandle) Ready() <-chan struct{} { return h.ready }

func (h *processHandle) URL() string { return h.url }

func (h *processHandle) Done() <-chan struct{} { return h.exited }

func (h *processHandle) Err() error { return h.err }

// watch reads the child's stdout until it closes so the child never blocks on
// a full pipe.
func (h *processHandle) watch(r io.Reader) {
	defer close(h.drained)
	signalled := false
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		h.logger.Debug("server output", zap.String("line", line))
		if !signalled && strings.Contains(line, server.ReadyPrefix) {
			signalled = true
			close(h.ready)
		}
	}
}

// wait reaps the child once its output is drained.
func (h *processHandle) wait() {
	<-h.drained
	h.err = h.cmd.Wait()
	close(h.exited)
}

// Stop sends SIGTERM and waits for the child to exit.
func (h *processHandle) Stop() error {
	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to signal server: %w", err)
	}
	<-h.exited
	var exitErr *exec.ExitError
	if h.err != nil && !errors.As(h.err, &exitErr) {
		return fmt.Errorf("failed to wait for server: %w", h.err)
	}
	return nil
}

// InProcessLauncher runs the asset server on a goroutine of the current process.
type InProcessLauncher struct {
	Fs          afero.Fs
	Root        string
	DefaultData string
	Logger      *zap.Logger
}

// Launch starts the server. Port 0 binds an ephemeral port.
func (l *InProcessLauncher) Launch(ctx context.Context, port int) (ServerHandle, error) {
	srv := server.New(l.Fs, server.Config{Root: l.Root, Port: port, DefaultData: l.DefaultData}, l.Logger)
	runCtx, cancel := context.WithCancel(ctx)
	h := &inProcessHandle{srv: srv, cancel: cancel, exited: make(chan struct{})}
	go func() {
		h.err = srv.Run(runCtx)
		close(h.exited)
	}()
	return h, nil
}

type inProcessHandle struct {
	srv    *server.Server
	cancel context.CancelFunc
	exited chan struct{}
	err    error
}

func (h *inProcessHandle) Ready() <-chan struct{} { return h.srv.Ready() }

func (h *inProcessHandle) URL() string { return server.BaseURL(h.srv.Port()) }

func (h *inProcessHandle) Done() <-chan struct{} { return h.exited }

func (h *inProcessHandle) Err() error { return h.err }

// Stop cancels the server and returns the error it stopped with.
func (h *inProcessHandle) Stop() error {
	h.cancel()
	<-h.exited
	return h.err
}
