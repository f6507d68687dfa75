// internal/browser/session/remote.go
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/searchpilot/internal/errs"
)

// ErrNoPage is the cause reported when an operation needs the page but the
// session holds no connection.
var ErrNoPage = errors.New("browser page not initialized")

// DefaultConnectTimeout bounds discovery plus the first CDP round trip.
const DefaultConnectTimeout = 15 * time.Second

const detachTimeout = time.Second

// Options configure a RemoteSession.
type Options struct {
	// Endpoint is the browser's debug address, e.g. "127.0.0.1:9222".
	Endpoint       string
	ConnectTimeout time.Duration
	// HTTPClient is used for the /json discovery calls. Defaults to a client
	// with no global timeout; every call carries a context deadline.
	HTTPClient *http.Client
}

// connection is one live attachment to one tab.
type connection struct {
	id          string
	targetID    target.ID
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	idle        *idleTracker
	lost        atomic.Bool
	closeOnce   sync.Once
}

func (c *connection) alive() bool {
	return !c.lost.Load() && c.tabCtx.Err() == nil
}

// close detaches from the tab and then drops the websocket. The tab stays
// open in the externally managed browser.
func (c *connection) close() error {
	var err error
	c.closeOnce.Do(func() {
		wasAlive := c.alive()
		c.lost.Store(true)
		if wasAlive {
			err = c.detach()
		}
		c.tabCancel()
		c.allocCancel()
	})
	return err
}

// abandon tears the connection down without detaching. It is used while the
// attach may still be in flight and the chromedp target cannot be touched.
func (c *connection) abandon() {
	c.closeOnce.Do(func() {
		c.lost.Store(true)
		c.tabCancel()
		c.allocCancel()
	})
}

// detach ends the CDP session on the tab and forgets the chromedp target, so
// cancelling the tab context no longer sends Target.closeTarget.
func (c *connection) detach() error {
	cc := chromedp.FromContext(c.tabCtx)
	if cc == nil || cc.Browser == nil || cc.Target == nil {
		return nil
	}
	sessionID := cc.Target.SessionID
	cc.Target = nil
	if sessionID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), detachTimeout)
	defer cancel()
	return target.DetachFromTarget().WithSessionID(sessionID).Do(cdp.WithExecutor(ctx, cc.Browser))
}

// RemoteSession owns the single connection to an externally running browser.
// It never launches or terminates the browser process.
type RemoteSession struct {
	opts   Options
	logger *zap.Logger

	mu   sync.Mutex
	conn *connection
}

// NewRemoteSession returns a disconnected session for the given endpoint.
func NewRemoteSession(opts Options, logger *zap.Logger) *RemoteSession {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &RemoteSession{
		opts:   opts,
		logger: logger.Named("session").With(zap.String("endpoint", opts.Endpoint)),
	}
}

// Endpoint returns the configured debug endpoint.
func (s *RemoteSession) Endpoint() string { return s.opts.Endpoint }

// Connect attaches to the first open page of the browser at the configured
// endpoint, or opens a new tab when there is none. Any previous connection is
// released first. Failures are reported as *errs.ConnectError.
func (s *RemoteSession) Connect(ctx context.Context) error {
	s.Disconnect()

	connectCtx, cancel := context.WithTimeout(ctx, s.opts.ConnectTimeout)
	defer cancel()

	conn, err := s.dial(ctx, connectCtx)
	if err != nil {
		return &errs.ConnectError{Endpoint: s.opts.Endpoint, Err: err}
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.logger.Info("Connected to browser",
		zap.String("connection_id", conn.id),
		zap.String("target_id", string(conn.targetID)),
	)
	return nil
}

func (s *RemoteSession) dial(parent, connectCtx context.Context) (*connection, error) {
	base := baseURL(s.opts.Endpoint)

	version, err := fetchVersion(connectCtx, s.opts.HTTPClient, base)
	if err != nil {
		return nil, err
	}
	pages, err := listPages(connectCtx, s.opts.HTTPClient, base)
	if err != nil {
		return nil, err
	}

	// The allocator must outlive this call, so it hangs off a detached parent.
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(Detach(parent), version.WebSocketDebuggerURL, chromedp.NoModifyURL)

	var ctxOpts []chromedp.ContextOption
	if len(pages) > 0 {
		ctxOpts = append(ctxOpts, chromedp.WithTargetID(target.ID(pages[0].ID)))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	conn := &connection{
		id:          uuid.New().String(),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		idle:        newIdleTracker(),
	}

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		switch ev.(type) {
		case *inspector.EventDetached, *inspector.EventTargetCrashed:
			conn.lost.Store(true)
		default:
			conn.idle.handle(ev)
		}
	})

	// The first Run attaches to the browser and must use the long-lived tab
	// context, so the connect deadline is enforced from the outside.
	attached := make(chan error, 1)
	go func() {
		attached <- chromedp.Run(tabCtx, network.Enable())
	}()

	select {
	case err = <-attached:
		if err != nil {
			_ = conn.close()
			return nil, fmt.Errorf("attach failed: %w", err)
		}
	case <-connectCtx.Done():
		conn.abandon()
		return nil, fmt.Errorf("attach failed: %w", connectCtx.Err())
	}

	c := chromedp.FromContext(tabCtx)
	if c != nil && c.Target != nil {
		conn.targetID = c.Target.TargetID
	}
	if c != nil && c.Browser != nil {
		go func() {
			select {
			case <-c.Browser.LostConnection:
				conn.lost.Store(true)
			case <-tabCtx.Done():
			}
		}()
	}
	return conn, nil
}

// IsConnected reports whether the session holds a live connection. It never
// blocks on the network.
func (s *RemoteSession) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && s.conn.alive()
}

// Disconnect releases the control connection. The attached tab and the
// browser process keep running. Safe to call repeatedly.
func (s *RemoteSession) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return
	}
	if err := conn.close(); err != nil {
		s.logger.Debug("Detach from tab failed", zap.String("connection_id", conn.id), zap.Error(err))
	}
	s.logger.Info("Disconnected from browser", zap.String("connection_id", conn.id))
}

// Reconnect drops any stale connection, waits backoff, then connects again.
// It reports success instead of returning the error so callers own the retry
// policy. A canceled ctx aborts the wait and yields false.
func (s *RemoteSession) Reconnect(ctx context.Context, backoff time.Duration) bool {
	s.Disconnect()

	s.logger.Info("Reconnecting to browser", zap.Duration("backoff", backoff))
	if backoff > 0 {
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}

	if err := s.Connect(ctx); err != nil {
		s.logger.Warn("Reconnect failed", zap.Error(err))
		return false
	}
	return true
}

func (s *RemoteSession) current() *connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Run executes chromedp actions against the attached tab under ctx's
// deadline. A missing or dropped connection is reported as
// *errs.ConnectionLostError; a ctx that ended first yields ctx.Err().
func (s *RemoteSession) Run(ctx context.Context, actions ...chromedp.Action) error {
	conn := s.current()
	if conn == nil {
		return &errs.ConnectionLostError{Op: "run", Err: ErrNoPage}
	}
	if !conn.alive() {
		return &errs.ConnectionLostError{Op: "run", Err: errors.New("connection already closed")}
	}

	runCtx, cancel := CombineContext(conn.tabCtx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if !conn.alive() {
		return &errs.ConnectionLostError{Op: "run", Err: err}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
