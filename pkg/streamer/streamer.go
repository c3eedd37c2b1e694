// Package streamer runs the external helper that copies frames from the
// capture device into a v4l2 loopback device.
package streamer

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/kevmo314/go-avertv/pkg/geometry"
)

var ErrRunning = errors.New("streamer: already running")

const DefaultStopTimeout = 3 * time.Second

type Config struct {
	Binary string
	// Device is substituted for {device} in Args.
	Device string
	// Args may contain {device}, {width} and {height}.
	Args        []string
	StopTimeout time.Duration
	Logger      *slog.Logger
}

// Streamer manages at most one helper process at a time. It is safe for
// concurrent use.
type Streamer struct {
	cfg Config
	log *slog.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	done     chan struct{}
	session  uuid.UUID
	stopping bool
	exitErr  error
}

func New(cfg Config) *Streamer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	return &Streamer{cfg: cfg, log: cfg.Logger.With("component", "streamer")}
}

// ExpandArgs substitutes the placeholders in args.
func ExpandArgs(args []string, device string, size geometry.Size) []string {
	r := strings.NewReplacer(
		"{device}", device,
		"{width}", strconv.Itoa(size.Width),
		"{height}", strconv.Itoa(size.Height),
	)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

type logWriter struct {
	log    *slog.Logger
	stream string
}

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Debug("streamer output", "stream", w.stream, "output", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Start launches the helper for a capture of the given size and returns the
// session id of the run.
func (s *Streamer) Start(size geometry.Size) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil {
		return uuid.Nil, ErrRunning
	}

	args := ExpandArgs(s.cfg.Args, s.cfg.Device, size)
	cmd := exec.Command(s.cfg.Binary, args...)
	// Own process group so Stop reaches the helper's children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = logWriter{s.log, "stdout"}
	cmd.Stderr = logWriter{s.log, "stderr"}
	if err := cmd.Start(); err != nil {
		return uuid.Nil, fmt.Errorf("starting %s: %w", s.cfg.Binary, err)
	}

	session := uuid.New()
	done := make(chan struct{})
	s.cmd, s.done, s.session, s.stopping, s.exitErr = cmd, done, session, false, nil
	s.log.Info("streamer started", "session", session, "pid", cmd.Process.Pid, "width", size.Width, "height", size.Height)

	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		if !s.stopping {
			s.log.Warn("streamer exited", "session", session, "err", err)
		}
		s.exitErr = err
		if s.cmd == cmd {
			s.cmd = nil
		}
		s.mu.Unlock()
		close(done)
	}()
	return session, nil
}

// Stop sends SIGTERM to the helper's process group and SIGKILL if it has
// not exited after the stop timeout. Stopping a streamer that is not running
// is a no-op.
func (s *Streamer) Stop() error {
	s.mu.Lock()
	cmd, done, session := s.cmd, s.done, s.session
	if cmd == nil {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	s.mu.Unlock()

	pid := cmd.Process.Pid
	if err := unix.Kill(-pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		s.log.Warn("failed to signal streamer", "session", session, "err", err)
	}

	select {
	case <-done:
		s.log.Info("streamer stopped", "session", session)
		return nil
	case <-time.After(s.cfg.StopTimeout):
		s.log.Warn("streamer ignored SIGTERM, killing", "session", session, "timeout", s.cfg.StopTimeout)
	}

	if err := unix.Kill(-pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("killing streamer: %w", err)
	}
	<-done
	return nil
}

// Restart stops the running helper, if any, and starts a new one.
func (s *Streamer) Restart(size geometry.Size) (uuid.UUID, error) {
	if err := s.Stop(); err != nil {
		return uuid.Nil, err
	}
	return s.Start(size)
}

func (s *Streamer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

// Session is the id of the current or last run.
func (s *Streamer) Session() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Done is closed when the current run exits. It is nil before the first
// Start.
func (s *Streamer) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// ExitErr is the error of the last run after Done is closed.
func (s *Streamer) ExitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitErr
}
