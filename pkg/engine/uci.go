package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/mkarras/chess-analysis/pkg/core"
	"github.com/mkarras/chess-analysis/pkg/security"
)

const (
	// handshakeTimeout bounds the uci/isready exchange at startup.
	handshakeTimeout = 10 * time.Second

	// evaluateTimeoutFactor bounds Evaluate at this multiple of the
	// configured per-move time budget.
	evaluateTimeoutFactor = 5

	// defaultEvaluateTimeout applies when no time budget is configured and
	// the search is bounded by depth alone.
	defaultEvaluateTimeout = time.Minute

	// quitGrace is how long Close waits for a clean exit before killing.
	quitGrace = 2 * time.Second
)

// UCIOpener starts real engine processes speaking the UCI protocol.
type UCIOpener struct{}

// Open validates the binary, starts the process, and runs the UCI
// handshake: uci → uciok, thread/hash options, isready → readyok.
func (UCIOpener) Open(cfg core.EngineConfig) (Session, error) {
	info, err := os.Stat(cfg.BinPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", core.ErrEngineUnavailable, cfg.BinPath, err)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return nil, fmt.Errorf("%w: %q is not an executable file", core.ErrEngineUnavailable, cfg.BinPath)
	}

	cmd := exec.Command(cfg.BinPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEngineStartupFailed, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEngineStartupFailed, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEngineStartupFailed, err)
	}

	s := &uciSession{
		cfg:    cfg,
		cmd:    cmd,
		stdin:  stdin,
		lines:  make(chan string, 64),
		exited: make(chan struct{}),
	}
	go s.readLoop(stdout)
	go func() {
		// Reap exactly once; Close and crash detection both key off this.
		cmd.Wait()
		close(s.exited)
	}()

	if err := s.handshake(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

type uciSession struct {
	cfg    core.EngineConfig
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  chan string
	exited chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func (s *uciSession) readLoop(stdout io.Reader) {
	defer close(s.lines)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.lines <- scanner.Text()
	}
}

func (s *uciSession) handshake() error {
	if err := s.send("uci"); err != nil {
		return fmt.Errorf("%w: %v", core.ErrEngineStartupFailed, err)
	}
	if _, err := s.waitFor("uciok", handshakeTimeout); err != nil {
		return fmt.Errorf("%w: no uciok: %v", core.ErrEngineStartupFailed, err)
	}

	threads := security.ClampThreads(s.cfg.Threads)
	hash := security.ClampHashMB(s.cfg.HashMB)
	if err := s.send(fmt.Sprintf("setoption name Threads value %d", threads)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrEngineStartupFailed, err)
	}
	if err := s.send(fmt.Sprintf("setoption name Hash value %d", hash)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrEngineStartupFailed, err)
	}

	if err := s.send("isready"); err != nil {
		return fmt.Errorf("%w: %v", core.ErrEngineStartupFailed, err)
	}
	if _, err := s.waitFor("readyok", handshakeTimeout); err != nil {
		return fmt.Errorf("%w: no readyok: %v", core.ErrEngineStartupFailed, err)
	}
	return nil
}

func (s *uciSession) send(cmd string) error {
	if _, err := io.WriteString(s.stdin, cmd+"\n"); err != nil {
		return err
	}
	return nil
}

// waitFor discards lines until one containing want arrives.
func (s *uciSession) waitFor(want string, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return "", core.ErrEngineCrashed
			}
			if containsToken(line, want) {
				return line, nil
			}
		case <-timer.C:
			return "", core.ErrEngineTimeout
		}
	}
}

func (s *uciSession) SetPosition(fen string) error {
	var cmd string
	if fen == "" {
		cmd = "position startpos"
	} else {
		cmd = "position fen " + fen
	}
	if err := s.send(cmd); err != nil {
		return fmt.Errorf("%w: %v", core.ErrEngineCrashed, err)
	}
	return nil
}

func (s *uciSession) Evaluate(ctx context.Context) (core.Evaluation, error) {
	goCmd := "go"
	if s.cfg.Depth > 0 {
		goCmd += fmt.Sprintf(" depth %d", security.ClampDepth(s.cfg.Depth))
	}
	if s.cfg.MoveTime > 0 {
		goCmd += fmt.Sprintf(" movetime %d", security.ClampMoveTime(s.cfg.MoveTime).Milliseconds())
	}

	// The original defaults to an even score when the engine reports none.
	ev := core.Evaluation{Type: core.ScoreCentipawn}
	if err := s.send(goCmd); err != nil {
		return ev, fmt.Errorf("%w: %v", core.ErrEngineCrashed, err)
	}

	timeout := defaultEvaluateTimeout
	if s.cfg.MoveTime > 0 {
		timeout = evaluateTimeoutFactor * security.ClampMoveTime(s.cfg.MoveTime)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return ev, core.ErrEngineCrashed
			}
			if best, done := parseBestMove(line); done {
				ev.BestMove = best
				return ev, nil
			}
			parseInfo(line, &ev)
		case <-timer.C:
			return ev, fmt.Errorf("%w: no bestmove within %v", core.ErrEngineTimeout, timeout)
		case <-ctx.Done():
			return ev, ctx.Err()
		}
	}
}

// Close asks the engine to quit, then kills it if it lingers. The process
// is reaped on every path so an abandoned session never holds its
// configured threads and hash.
func (s *uciSession) Close() error {
	s.closeOnce.Do(func() {
		s.send("quit")
		s.stdin.Close()

		// Keep the line channel moving until the read loop sees EOF; a
		// chatty engine could otherwise back it up against the buffer and
		// leave the read goroutine blocked on a send forever.
		drained := make(chan struct{})
		go func() {
			for range s.lines {
			}
			close(drained)
		}()

		select {
		case <-s.exited:
		case <-time.After(quitGrace):
			if err := s.cmd.Process.Kill(); err != nil {
				s.closeErr = fmt.Errorf("engine: kill: %w", err)
			}
			<-s.exited
		}
		<-drained
	})
	return s.closeErr
}
