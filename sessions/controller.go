package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iamMohdZiya/appAttendence/export"
	"github.com/iamMohdZiya/appAttendence/location"
	"github.com/iamMohdZiya/appAttendence/logger"
	"github.com/iamMohdZiya/appAttendence/models"
)

// State is the lifecycle position of the controller's session.
type State int

const (
	StateIdle State = iota
	StateActive
	StateEndRequested
	StateEnding
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateActive:
		return "Active"
	case StateEndRequested:
		return "EndRequested"
	case StateEnding:
		return "Ending"
	case StateEnded:
		return "Ended"
	}
	return "Unknown"
}

const (
	DefaultRotatePeriod = 30 * time.Second
	DefaultPollPeriod   = 5 * time.Second
)

var (
	// ErrAlreadyActive means Start was called while a previous session's
	// timers were still live. The previous session must end first.
	ErrAlreadyActive = errors.New("a session is already active")

	// ErrStartFailed wraps any location or server failure during session
	// start. Fatal to the screen, never retried.
	ErrStartFailed = errors.New("failed to start session")
)

// API is the slice of the backend client the controller uses.
type API interface {
	StartSession(ctx context.Context, courseID string, lat, lng float64) (models.StartSessionResponse, error)
	RotateCode(ctx context.Context, sessionID string) (string, error)
	SessionRoster(ctx context.Context, sessionID string) (models.Roster, error)
	EndSession(ctx context.Context, sessionID string) error
}

// EndResult is handed to the listener once the session reaches its
// terminal state. ServerErr is set on the degraded path where the
// backend could not be told the session closed; the session still ends
// locally.
type EndResult struct {
	ServerErr  error
	ExportPath string
	ExportErr  error
	Roster     models.Roster
}

// Listener receives state the screen renders. All callbacks run on the
// controller's event loop and must return promptly.
type Listener interface {
	CodeChanged(code string)
	RosterChanged(roster models.Roster)
	EndConfirmation(presentCount int)
	Ended(result EndResult)
}

// Controller drives one live session: it starts the session from a
// location fix, keeps the rotating code fresh, polls the roster, and
// runs the end-session state machine. One controller backs one screen;
// all session state is mutated on a single event loop.
type Controller struct {
	api      API
	loc      location.Provider
	sink     export.Sink
	listener Listener
	log      *logrus.Logger

	rotatePeriod time.Duration
	pollPeriod   time.Duration

	mu       sync.Mutex
	starting bool
	state    State
	session  models.Session
	roster   models.Roster

	commands      chan command
	rotateResults chan rotateResult
	pollResults   chan pollResult
	endResults    chan error
	done          chan struct{}
	cancel        context.CancelFunc
}

type command int

const (
	cmdRequestEnd command = iota
	cmdCancelEnd
	cmdConfirmEnd
)

type rotateResult struct {
	sessionID string
	code      string
	err       error
}

type pollResult struct {
	sessionID string
	roster    models.Roster
	err       error
}

func NewController(apiClient API, loc location.Provider, sink export.Sink, listener Listener) *Controller {
	return &Controller{
		api:          apiClient,
		loc:          loc,
		sink:         sink,
		listener:     listener,
		log:          logger.Logger,
		rotatePeriod: DefaultRotatePeriod,
		pollPeriod:   DefaultPollPeriod,
		state:        StateIdle,
	}
}

// SetPeriods overrides the rotation and polling intervals. Must be
// called before Start.
func (c *Controller) SetPeriods(rotate, poll time.Duration) {
	c.rotatePeriod = rotate
	c.pollPeriod = poll
}

// Start acquires a location fix, opens a session on the server and
// starts the rotation and polling tasks. Returns
// location.ErrPermissionDenied when the platform refuses location, and
// an ErrStartFailed wrap for anything else. Neither is retried.
func (c *Controller) Start(ctx context.Context, course models.Course) error {
	c.mu.Lock()
	if c.starting || (c.state != StateIdle && c.state != StateEnded) {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	c.starting = true
	// A previous session's loop must have fully stopped before a new
	// one may start.
	prevDone := c.done
	c.mu.Unlock()
	if prevDone != nil {
		<-prevDone
	}
	defer func() {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()
	}()

	if err := c.loc.RequestPermission(ctx); err != nil {
		return err
	}
	fix, err := c.loc.Current(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartFailed, err)
	}
	resp, err := c.api.StartSession(ctx, course.ID, fix.Lat, fix.Lng)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartFailed, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.session = models.Session{
		ID:          resp.SessionID,
		CurrentCode: resp.QRCode,
		Course:      course,
		Active:      true,
	}
	c.roster = nil
	c.state = StateActive
	c.commands = make(chan command)
	c.rotateResults = make(chan rotateResult)
	c.pollResults = make(chan pollResult)
	c.endResults = make(chan error, 1)
	c.done = make(chan struct{})
	c.cancel = cancel
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"session": resp.SessionID,
		"course":  course.CourseCode,
	}).Info("session started")

	c.listener.CodeChanged(resp.QRCode)
	go c.run(loopCtx, resp.SessionID)
	return nil
}

// RequestEnd pauses both interval tasks and asks the listener to
// confirm ending, reporting the current Present count. No-op outside
// the Active state.
func (c *Controller) RequestEnd() { c.send(cmdRequestEnd) }

// CancelEnd aborts a pending end request and resumes both interval
// tasks from a fresh tick.
func (c *Controller) CancelEnd() { c.send(cmdCancelEnd) }

// ConfirmEnd commits a pending end request: the server is notified and
// the controller reaches its terminal state whether or not that call
// succeeds.
func (c *Controller) ConfirmEnd() { c.send(cmdConfirmEnd) }

func (c *Controller) send(cmd command) {
	c.mu.Lock()
	commands, done := c.commands, c.done
	c.mu.Unlock()
	if commands == nil {
		return
	}
	select {
	case commands <- cmd:
	case <-done:
	}
}

// Close tears the controller down: both interval tasks and the event
// loop stop, regardless of terminator state. Safe to call repeatedly;
// callers defer it on screen mount so a navigation away can never leak
// a polling timer.
func (c *Controller) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the session, valid only while Active is true.
func (c *Controller) Session() models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Code returns the code currently displayed.
func (c *Controller) Code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.CurrentCode
}

// Roster returns the last applied roster snapshot.
func (c *Controller) Roster() models.Roster {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roster
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) currentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
