package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/logger"
)

// ConnectNotice is sent through the bridge before every connection attempt.
const ConnectNotice = "DB Connection Attempt"

// ConnectState is the connection controller's state.
type ConnectState int

const (
	StateIdle ConnectState = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s ConnectState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ConnectConfig tunes connection attempts.
type ConnectConfig struct {
	Timeout        time.Duration // per attempt
	MaxRetries     int           // retries after the first attempt
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	NavigateDelay  time.Duration
	SchemaPage     string
}

// DefaultConnectConfig returns the defaults used when nothing is configured.
func DefaultConnectConfig() ConnectConfig {
	return ConnectConfig{
		Timeout:        10 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		NavigateDelay:  500 * time.Millisecond,
		SchemaPage:     "/tables",
	}
}

// ConnectOutcome is the result of one Connect call. Message is what the
// page shows; Err is set for every state but StateConnected.
type ConnectOutcome struct {
	State    ConnectState
	Message  string
	Attempts int
	Err      error
}

// ConnectController drives the connect page.
type ConnectController struct {
	client Connector
	bridge bridge.Bridge
	cfg    ConnectConfig
	log    *logger.Logger

	// after schedules f once after d; swapped in tests.
	after func(d time.Duration, f func())

	mu    sync.Mutex
	state ConnectState
}

// NewConnectController creates a controller in StateIdle.
func NewConnectController(client Connector, br bridge.Bridge, cfg ConnectConfig, log *logger.Logger) *ConnectController {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.SchemaPage == "" {
		cfg.SchemaPage = DefaultConnectConfig().SchemaPage
	}
	return &ConnectController{
		client: client,
		bridge: br,
		cfg:    cfg,
		log:    log.Named("connect"),
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// State returns the current state.
func (c *ConnectController) State() ConnectState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect runs one connection attempt. While another attempt is in flight it
// returns at once with an errs.ErrKindBusy error and sends nothing.
//
// On success exactly one navigation to the schema page is scheduled after
// the navigate delay. On failure the controller returns to StateIdle so the
// user can try again.
func (c *ConnectController) Connect(ctx context.Context) ConnectOutcome {
	c.mu.Lock()
	if c.state == StateConnecting {
		c.mu.Unlock()
		return ConnectOutcome{
			State:   StateConnecting,
			Message: "Connection attempt already in progress",
			Err:     errs.New(errs.ErrKindBusy, "connection attempt already in progress"),
		}
	}
	c.state = StateConnecting
	c.mu.Unlock()

	c.bridge.Notify(ConnectNotice)

	res, attempts, err := c.attempt(ctx)
	if err != nil {
		return c.fail(Describe(err, "Connection attempt"), attempts, err)
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Connection Failed"
		}
		return c.fail(msg, attempts, errs.New(errs.ErrKindBackend, msg))
	}

	c.setState(StateConnected)
	c.log.With().Int("attempts", attempts).Logger().Info("connected")

	page := c.cfg.SchemaPage
	c.after(c.cfg.NavigateDelay, func() {
		c.bridge.Navigate(page)
	})

	return ConnectOutcome{State: StateConnected, Message: res.Message, Attempts: attempts}
}

// attempt calls the backend, retrying transport failures and timeouts that
// never reached the backend. Anything the backend answered is final.
func (c *ConnectController) attempt(ctx context.Context) (*backend.ConnectResult, int, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff
	b.MaxElapsedTime = 0

	retries := c.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)

	attempts := 0
	op := func() (*backend.ConnectResult, error) {
		attempts++
		actx := ctx
		if c.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
		}

		res, err := c.client.Connect(actx)
		if err == nil {
			return res, nil
		}
		if retryable(err) && ctx.Err() == nil {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		c.log.WarnWith("connect attempt failed, retrying", err, map[string]interface{}{
			"attempt": attempts,
			"wait_ms": wait.Milliseconds(),
		})
	}

	res, err := backoff.RetryNotifyWithData(op, policy, notify)
	if err != nil {
		return nil, attempts, contextErr(err)
	}
	return res, attempts, nil
}

func (c *ConnectController) fail(msg string, attempts int, err error) ConnectOutcome {
	c.setState(StateIdle)
	c.log.WarnWith("connection failed", err, map[string]interface{}{"attempts": attempts})
	return ConnectOutcome{State: StateFailed, Message: msg, Attempts: attempts, Err: err}
}

func (c *ConnectController) setState(s ConnectState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func retryable(err error) bool {
	return errs.IsRetryable(err) && backend.StatusOf(err) == 0
}

// contextErr maps a bare context error returned by the retry loop.
func contextErr(err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return errs.Wrap(errs.ErrKindCancelled, "connection attempt cancelled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.ErrKindTimeout, "connection attempt timed out", err)
	default:
		return errs.Wrap(errs.ErrKindUnknown, "connection attempt failed", err)
	}
}
