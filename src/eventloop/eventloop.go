package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"vr-dimension/src/appstate"
	"vr-dimension/src/logutil"
	"vr-dimension/src/singleinstance"
	"vr-dimension/src/window"
	"vr-dimension/src/worker"
)

const (
	defaultIdleDelay  = 100 * time.Millisecond
	defaultErrorDelay = 100 * time.Millisecond
)

var ErrNoWindowSelected = errors.New("no window selected")

// Display receives processed frames. Implementations are called from the
// loop goroutine and must hand off to their own UI thread.
type Display interface {
	ShowFrame(img *image.RGBA)
	HideFrame()
}

type Options struct {
	State      *appstate.State
	Finder     window.Finder
	Grab       worker.GrabFunc
	Display    Display
	Server     singleinstance.Server
	IdleDelay  time.Duration
	ErrorDelay time.Duration
}

// Stats counts what the loop has done since it started.
type Stats struct {
	Shown   uint64
	Dropped uint64
	Errors  uint64
}

// Loop is the single-goroutine coordinator: it polls the selected window at
// the configured frame rate, hands frames to the worker pool and reacts to
// commands from the GUI, the hotkey and the control server.
type Loop struct {
	state      *appstate.State
	finder     window.Finder
	display    Display
	pool       *worker.Pool
	srv        singleinstance.Server
	idleDelay  time.Duration
	errorDelay time.Duration

	commands chan singleinstance.Command
	results  chan result

	shown   atomic.Uint64
	dropped atomic.Uint64
	errs    atomic.Uint64

	frameMu   sync.RWMutex
	lastFrame *image.RGBA
	lastErr   error
}

type result struct {
	frame *image.RGBA
	err   error
}

func New(opts Options) *Loop {
	l := &Loop{
		state:      opts.State,
		finder:     opts.Finder,
		display:    opts.Display,
		pool:       worker.New(1, opts.Grab),
		srv:        opts.Server,
		idleDelay:  opts.IdleDelay,
		errorDelay: opts.ErrorDelay,
		commands:   make(chan singleinstance.Command, 8),
		results:    make(chan result, 1),
	}
	if l.state == nil {
		l.state = appstate.New(nil)
	}
	if l.finder == nil {
		l.finder = window.NewFinder()
	}
	if l.display == nil {
		l.display = nopDisplay{}
	}
	if l.idleDelay <= 0 {
		l.idleDelay = defaultIdleDelay
	}
	if l.errorDelay <= 0 {
		l.errorDelay = defaultErrorDelay
	}
	return l
}

// Send posts a command without blocking; it is dropped if the queue is full.
func (l *Loop) Send(cmd singleinstance.Command) {
	select {
	case l.commands <- cmd:
	default:
		log.Printf("eventloop: command queue full, dropping %s", cmd)
	}
}

func (l *Loop) Start()  { l.Send(singleinstance.CommandStart) }
func (l *Loop) Stop()   { l.Send(singleinstance.CommandStop) }
func (l *Loop) Toggle() { l.Send(singleinstance.CommandToggle) }

func (l *Loop) Stats() Stats {
	return Stats{Shown: l.shown.Load(), Dropped: l.dropped.Load(), Errors: l.errs.Load()}
}

// LastFrame returns the most recently displayed frame, or nil.
func (l *Loop) LastFrame() *image.RGBA {
	l.frameMu.RLock()
	defer l.frameMu.RUnlock()
	return l.lastFrame
}

// LastError returns the most recent capture error, or nil.
func (l *Loop) LastError() error {
	l.frameMu.RLock()
	defer l.frameMu.RUnlock()
	return l.lastErr
}

// Run processes ticks, results and commands until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.pool.Close()
	defer l.display.HideFrame()

	var reqCh chan singleinstance.Conn
	if l.srv != nil {
		if err := l.srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start control server: %w", err)
		}
		defer l.srv.Close()
		log.Printf("Resident listening on 127.0.0.1:%d", l.srv.Port())

		reqCh = make(chan singleinstance.Conn, 4)
		go func() {
			defer close(reqCh)
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					return
				}
				select {
				case reqCh <- conn:
				case <-ctx.Done():
					conn.Close()
					return
				}
			}
		}()
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-l.commands:
			if _, err := l.handleCommand(cmd); err != nil {
				log.Printf("eventloop: %s: %v", cmd, err)
			}
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(conn)
		case res := <-l.results:
			if delay, retry := l.handleResult(res); retry {
				timer.Reset(delay)
			}
		case <-timer.C:
			timer.Reset(l.tick(ctx))
		}
	}
}

func (l *Loop) handleConn(conn singleinstance.Conn) {
	defer conn.Close()
	status, err := l.handleCommand(conn.Request().Command)
	if err != nil {
		_ = conn.RespondError(err.Error())
		return
	}
	_ = conn.RespondSuccess(status)
}

func (l *Loop) handleCommand(cmd singleinstance.Command) (string, error) {
	switch cmd {
	case singleinstance.CommandStart:
		return l.startCapture()
	case singleinstance.CommandStop:
		l.stopCapture("Stopped")
	case singleinstance.CommandToggle:
		if l.state.Capturing() {
			l.stopCapture("Stopped")
		} else {
			return l.startCapture()
		}
	case singleinstance.CommandStatus:
	default:
		return "", fmt.Errorf("unsupported command %q", cmd)
	}
	return l.statusLine(), nil
}

func (l *Loop) startCapture() (string, error) {
	title := l.state.SelectedWindow()
	if title == "" {
		l.state.SetStatus("Select a window first")
		return "", ErrNoWindowSelected
	}
	log.Printf("Capture started for %q", logutil.SanitizeTitle(title))
	l.state.SetCapturing(true, "Capturing")
	return l.statusLine(), nil
}

func (l *Loop) stopCapture(status string) {
	if l.state.Capturing() {
		log.Printf("Capture stopped: %s", status)
	}
	l.state.SetCapturing(false, status)
	l.display.HideFrame()
}

func (l *Loop) statusLine() string {
	snap := l.state.Snapshot()
	st := l.Stats()
	return fmt.Sprintf("%s | window=%q capturing=%v shown=%d dropped=%d errors=%d",
		snap.Status, snap.Window, snap.Capturing, st.Shown, st.Dropped, st.Errors)
}

// tick runs one polling step and returns the delay until the next one.
func (l *Loop) tick(ctx context.Context) time.Duration {
	snap := l.state.Snapshot()
	if !snap.Capturing || snap.Window == "" {
		return l.idleDelay
	}

	info, err := l.finder.Find(snap.Window)
	if err != nil {
		log.Printf("eventloop: %v", err)
		l.stopCapture("Window not found: " + snap.Window)
		return l.idleDelay
	}

	params, err := snap.Settings.EyeParams()
	if err != nil {
		l.recordError(err)
		return l.errorDelay
	}

	interval := frameInterval(snap.Settings.FrameRate)
	submitted := l.pool.Submit(ctx, worker.Job{Bounds: info.Bounds, Params: params}, func(frame *image.RGBA, err error) {
		select {
		case l.results <- result{frame: frame, err: err}:
		case <-ctx.Done():
		}
	})
	if !submitted {
		l.dropped.Add(1)
	}
	return interval
}

// handleResult displays a finished frame. On error it asks for a retry
// after the error delay.
func (l *Loop) handleResult(res result) (time.Duration, bool) {
	if res.err != nil {
		if errors.Is(res.err, context.Canceled) {
			return 0, false
		}
		l.recordError(res.err)
		return l.errorDelay, true
	}
	if !l.state.Capturing() || res.frame == nil {
		return 0, false
	}

	l.frameMu.Lock()
	l.lastFrame = res.frame
	l.lastErr = nil
	l.frameMu.Unlock()

	l.display.ShowFrame(res.frame)
	l.shown.Add(1)
	l.state.SetStatus("Capturing")
	return 0, false
}

func (l *Loop) recordError(err error) {
	l.errs.Add(1)
	log.Printf("Error: %v", err)
	l.frameMu.Lock()
	l.lastErr = err
	l.frameMu.Unlock()
	l.state.SetStatus("Capture error: " + err.Error())
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

type nopDisplay struct{}

func (nopDisplay) ShowFrame(*image.RGBA) {}
func (nopDisplay) HideFrame()            {}
