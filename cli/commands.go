package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iamMohdZiya/appAttendence/auth"
	"github.com/iamMohdZiya/appAttendence/devserver"
	"github.com/iamMohdZiya/appAttendence/export"
	"github.com/iamMohdZiya/appAttendence/models"
	"github.com/iamMohdZiya/appAttendence/reports"
	"github.com/iamMohdZiya/appAttendence/scan"
)

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			user, err := auth.NewManager(app.api, app.store).Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if err := auth.NewManager(app.api, app.store).Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the stored profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			mgr := auth.NewManager(app.api, app.store)
			if name == "" && email == "" && password == "" {
				user, err := mgr.CurrentUser()
				if err != nil {
					return err
				}
				fmt.Printf("%s <%s> role=%s", user.Name, user.Email, user.Role)
				if user.RollNo != "" {
					fmt.Printf(" roll=%s", user.RollNo)
				}
				fmt.Println()
				return nil
			}
			current, err := mgr.CurrentUser()
			if err != nil {
				return err
			}
			if name == "" {
				name = current.Name
			}
			if email == "" {
				email = current.Email
			}
			user, err := mgr.UpdateProfile(cmd.Context(), models.UpdateProfileRequest{
				Name:     name,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Profile updated: %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}

func newCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List courses assigned to you (faculty)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			courses, err := app.api.MyCourses(cmd.Context())
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				fmt.Println("No courses assigned yet.")
				return nil
			}
			for _, course := range courses {
				fmt.Printf("%-10s %s  (%s)\n", course.CourseCode, course.Name, course.ID)
			}
			return nil
		},
	}
}

func newActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List sessions you can join (student)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			active, err := app.api.ActiveSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(active) == 0 {
				fmt.Println("No active sessions right now.")
				return nil
			}
			for _, sess := range active {
				fmt.Printf("%-10s %s  session=%s\n", sess.Course.CourseCode, sess.Course.Name, sess.SessionID)
			}
			return nil
		},
	}
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <session-id> <code>",
		Short: "Submit a scanned code for attendance (student)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			resp, err := scan.NewScanner(app.api, app.loc).Mark(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", resp.Status, resp.Message)
			return nil
		},
	}
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var courseID string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your attendance history (student)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			records, err := reports.History(cmd.Context(), app.api)
			if err != nil {
				return err
			}
			records = reports.FilterByCourse(records, courseID)
			if len(records) == 0 {
				fmt.Println("No records.")
				return nil
			}
			for _, rec := range records {
				fmt.Printf("%s  %-10s %s\n",
					rec.CreatedAt.Local().Format("2006-01-02 15:04"),
					rec.Session.Course.CourseCode,
					rec.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "filter by course id")
	return cmd
}

func newReportCmd() *cobra.Command {
	var startDate, endDate, courseID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a faculty attendance report as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			records, err := reports.FacultyReport(cmd.Context(), app.api, startDate, endDate, courseID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No present students found for this period.")
				return nil
			}
			path, err := app.exporter.ExportReport(records, startDate, endDate)
			if err != nil && err != export.ErrNoRows {
				return err
			}
			fmt.Printf("Wrote %d rows to %s\n", len(records), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&startDate, "start", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&endDate, "end", "", "end date YYYY-MM-DD")
	cmd.Flags().StringVar(&courseID, "course", "", "filter by course id")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}

func newDevserverCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run the in-memory stub backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Devserver listening on %s (login: jane@college.edu / password)\n", addr)
			return devserver.New().Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
