package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/iamMohdZiya/appAttendence/export"
)

// run is the controller's event loop. It owns every mutation of the
// session and roster; network calls are dispatched to goroutines and
// their results applied here, so a slow rotation request never delays
// a roster poll. sessionID is fixed at schedule time rather than read
// from shared state, so a late result can never be applied to a
// different session.
func (c *Controller) run(ctx context.Context, sessionID string) {
	defer close(c.done)

	rotate := time.NewTicker(c.rotatePeriod)
	poll := time.NewTicker(c.pollPeriod)
	defer func() {
		rotate.Stop()
		poll.Stop()
	}()

	// The roster poller fires once as soon as the session is live.
	c.dispatchPoll(ctx, sessionID)

	for {
		select {
		case <-ctx.Done():
			// Screen teardown. Timers die with the loop no matter
			// which state the terminator was in.
			c.mu.Lock()
			c.state = StateEnded
			c.session.Active = false
			c.mu.Unlock()
			return

		case <-rotate.C:
			if c.currentState() == StateActive {
				c.dispatchRotate(ctx, sessionID)
			}

		case <-poll.C:
			if c.currentState() == StateActive {
				c.dispatchPoll(ctx, sessionID)
			}

		case res := <-c.rotateResults:
			c.applyRotate(res, sessionID)

		case res := <-c.pollResults:
			c.applyPoll(res, sessionID)

		case cmd := <-c.commands:
			switch cmd {
			case cmdRequestEnd:
				if c.currentState() != StateActive {
					break
				}
				rotate.Stop()
				poll.Stop()
				c.setState(StateEndRequested)
				c.listener.EndConfirmation(c.Roster().PresentCount())

			case cmdCancelEnd:
				if c.currentState() != StateEndRequested {
					break
				}
				// Resume is always cancel-then-create so there can
				// never be two live tickers for one task.
				rotate.Stop()
				poll.Stop()
				rotate = time.NewTicker(c.rotatePeriod)
				poll = time.NewTicker(c.pollPeriod)
				c.setState(StateActive)
				c.dispatchPoll(ctx, sessionID)

			case cmdConfirmEnd:
				if c.currentState() != StateEndRequested {
					break
				}
				c.setState(StateEnding)
				results := c.endResults
				go func() {
					err := c.api.EndSession(ctx, sessionID)
					select {
					case results <- err:
					case <-ctx.Done():
					}
				}()
			}

		case err := <-c.endResults:
			c.finishEnd(err)
			return
		}
	}
}

func (c *Controller) dispatchRotate(ctx context.Context, sessionID string) {
	// capture the channel on the loop goroutine; the field may belong
	// to a newer run by the time the request completes
	results := c.rotateResults
	go func() {
		code, err := c.api.RotateCode(ctx, sessionID)
		select {
		case results <- rotateResult{sessionID: sessionID, code: code, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) dispatchPoll(ctx context.Context, sessionID string) {
	results := c.pollResults
	go func() {
		roster, err := c.api.SessionRoster(ctx, sessionID)
		select {
		case results <- pollResult{sessionID: sessionID, roster: roster, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) applyRotate(res rotateResult, sessionID string) {
	if res.sessionID != sessionID {
		return
	}
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return
	}
	if res.err != nil {
		c.mu.Unlock()
		// Transient: the previous code stays up and the next tick retries.
		c.log.WithError(res.err).Debug("code rotation failed, keeping previous code")
		return
	}
	c.session.CurrentCode = res.code
	c.mu.Unlock()
	c.listener.CodeChanged(res.code)
}

func (c *Controller) applyPoll(res pollResult, sessionID string) {
	if res.sessionID != sessionID {
		return
	}
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return
	}
	if res.err != nil {
		c.mu.Unlock()
		// Transient: never clear the roster on a failed poll.
		c.log.WithError(res.err).Debug("roster fetch failed, keeping previous roster")
		return
	}
	// Full replacement, never a merge.
	c.roster = res.roster
	c.mu.Unlock()
	c.listener.RosterChanged(res.roster)
}

// finishEnd moves the controller to its terminal state. On the degraded
// path (server end call failed) the session still ends locally; the
// faculty member is never stuck on the screen because of a network
// failure. Export happens on the clean path only, and only when the
// roster has Present entries.
func (c *Controller) finishEnd(endErr error) {
	c.mu.Lock()
	c.state = StateEnded
	c.session.Active = false
	course := c.session.Course
	roster := c.roster
	c.mu.Unlock()

	result := EndResult{ServerErr: endErr, Roster: roster}
	if endErr != nil {
		c.log.WithError(endErr).Warn("could not close session on server, ending locally")
	} else if c.sink != nil {
		path, err := c.sink.ExportSession(course, roster)
		switch {
		case errors.Is(err, export.ErrNoRows):
			c.log.Info("no present entries, skipping export")
		case err != nil:
			result.ExportErr = err
		default:
			result.ExportPath = path
		}
	}
	c.listener.Ended(result)
}
