package client

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"lazo-pipeline/internal/api/v1/dto"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// Tracker renders a spinner while Wait polls a session. A disabled tracker is a no-op.
type Tracker struct {
	container *mpb.Progress
	bar       *mpb.Bar
	enabled   bool

	mu    sync.Mutex
	state string
}

func NewTracker(config ProgressConfig, sessionID string) *Tracker {
	t := &Tracker{state: "submitted"}
	if !config.Enabled {
		return t
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	t.container = mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	t.bar = t.container.New(0, mpb.SpinnerStyle(),
		mpb.PrependDecorators(
			decor.Name("session "+sessionID+" ", decor.WC{C: decor.DindentRight}),
			decor.Any(func(decor.Statistics) string { return t.currentState() }, decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace),
		),
	)
	t.enabled = true
	return t
}

func (t *Tracker) currentState() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Observe has the PollOptions.OnPoll signature
func (t *Tracker) Observe(attempt int, session *dto.SessionResponse) {
	t.mu.Lock()
	t.state = string(session.State)
	t.mu.Unlock()
	if t.enabled {
		t.bar.Increment()
	}
}

// Finish stops the spinner and waits for the last render
func (t *Tracker) Finish(success bool) {
	if !t.enabled {
		return
	}
	if success {
		t.bar.SetTotal(-1, true)
	} else {
		t.bar.Abort(false)
	}
	t.container.Wait()
}

func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}
	return IsTTY(os.Stderr)
}
