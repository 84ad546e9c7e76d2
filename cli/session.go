package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iamMohdZiya/appAttendence/models"
	"github.com/iamMohdZiya/appAttendence/sessions"
)

// terminalListener renders controller state to stdout and forwards the
// confirmation and terminal events to the command loop. The channels
// are buffered so the controller's event loop is never blocked on the
// terminal.
type terminalListener struct {
	confirm chan int
	ended   chan sessions.EndResult
}

func newTerminalListener() *terminalListener {
	return &terminalListener{
		confirm: make(chan int, 1),
		ended:   make(chan sessions.EndResult, 1),
	}
}

func (l *terminalListener) CodeChanged(code string) {
	fmt.Printf("\nCurrent code: %s\n", code)
}

func (l *terminalListener) RosterChanged(roster models.Roster) {
	fmt.Printf("Roster (%d scanned, %d present):\n", len(roster), roster.PresentCount())
	for _, e := range roster {
		fmt.Printf("  %-20s %-10s %s\n", e.DisplayName(), e.DisplayRoll(), e.Status)
	}
}

func (l *terminalListener) EndConfirmation(presentCount int) {
	l.confirm <- presentCount
}

func (l *terminalListener) Ended(result sessions.EndResult) {
	l.ended <- result
}

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session <course-id-or-code>",
		Short: "Run a live attendance session (faculty)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			course, err := findCourse(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			listener := newTerminalListener()
			ctrl := sessions.NewController(app.api, app.loc, app.exporter, listener)
			ctrl.SetPeriods(app.cfg.RotatePeriod, app.cfg.PollPeriod)

			if err := ctrl.Start(cmd.Context(), course); err != nil {
				return err
			}
			defer ctrl.Close()

			fmt.Printf("Session live for %s. Type 'end' to end it.\n", course.CourseCode)
			return runSessionLoop(ctrl, listener)
		},
	}
}

func findCourse(ctx context.Context, app *app, key string) (models.Course, error) {
	courses, err := app.api.MyCourses(ctx)
	if err != nil {
		return models.Course{}, err
	}
	for _, course := range courses {
		if course.ID == key || strings.EqualFold(course.CourseCode, key) {
			return course, nil
		}
	}
	return models.Course{}, fmt.Errorf("no course %q assigned to you", key)
}

// runSessionLoop multiplexes terminal input with controller events
// until the session reaches its terminal state or stdin closes.
func runSessionLoop(ctrl *sessions.Controller, listener *terminalListener) error {
	input := make(chan string)
	go func() {
		defer close(input)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- strings.TrimSpace(scanner.Text())
		}
	}()

	awaitingConfirm := false
	for {
		select {
		case n := <-listener.confirm:
			fmt.Printf("End session? Total Present: %d [y/n]: ", n)
			awaitingConfirm = true

		case result := <-listener.ended:
			if result.ServerErr != nil {
				fmt.Println("Could not close session on server; it has ended locally.")
			}
			switch {
			case result.ExportPath != "":
				fmt.Printf("Session ended. Exported %d rows to %s\n",
					result.Roster.PresentCount(), result.ExportPath)
			case result.ExportErr != nil:
				fmt.Printf("Session ended, but the export failed: %v\n", result.ExportErr)
			default:
				fmt.Println("Session ended.")
			}
			return nil

		case line, ok := <-input:
			if !ok {
				// stdin gone, tear the screen down
				return nil
			}
			if awaitingConfirm {
				awaitingConfirm = false
				if strings.EqualFold(line, "y") {
					ctrl.ConfirmEnd()
				} else {
					ctrl.CancelEnd()
					fmt.Println("Resumed.")
				}
				continue
			}
			if strings.EqualFold(line, "end") {
				ctrl.RequestEnd()
			}
		}
	}
}
