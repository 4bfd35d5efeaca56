package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <issue-id>",
		Short: "Show one issue with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _ := a.session(cmd)
			defer ctrl.Close()
			if err := ctrl.Open(commandContext(cmd), args[0]); err != nil {
				return err
			}
			is, _ := ctrl.Selected()
			printIssue(cmd.OutOrStdout(), is)
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "status <issue-id> <status>",
		Short: "Move an issue to another status",
		Long: `Move an issue along Open -> In Progress -> Resolved -> Closed.

Resolved and Closed record a resolution note; a default is used unless --note
is given. Closed issues cannot be changed.

Examples:
  issuectl status 3f2c... in-progress
  issuectl status 3f2c... resolved --note "Refund issued"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			if to == "" {
				return fmt.Errorf("status is required")
			}
			ctx := commandContext(cmd)
			ctrl, _ := a.session(cmd)
			defer ctrl.Close()
			if err := ctrl.Open(ctx, args[0]); err != nil {
				return err
			}
			ctrl.OpenStatusModal()
			if err := ctrl.UpdateStatus(ctx, to, note); err != nil {
				return err
			}
			is, _ := ctrl.Selected()
			fmt.Fprintf(cmd.OutOrStdout(), "Issue %s is now %s\n", is.ID, is.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "resolution note for Resolved or Closed")
	return cmd
}

func (a *app) assignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <issue-id> <user-id>",
		Short: "Assign an issue to an admin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			ctrl, _ := a.session(cmd)
			defer ctrl.Close()
			if err := ctrl.Open(ctx, args[0]); err != nil {
				return err
			}
			if err := ctrl.Assign(ctx, args[1]); err != nil {
				return err
			}
			is, _ := ctrl.Selected()
			fmt.Fprintf(cmd.OutOrStdout(), "Issue %s assigned to %s\n", is.ID, is.AssignedTo)
			return nil
		},
	}
}

func (a *app) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <issue-id> <text>...",
		Short: "Add a comment to an issue",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			ctrl, _ := a.session(cmd)
			defer ctrl.Close()
			if err := ctrl.Open(ctx, args[0]); err != nil {
				return err
			}
			ctrl.SetDraft(strings.Join(args[1:], " "))
			if err := ctrl.AddComment(ctx); err != nil {
				return err
			}
			is, _ := ctrl.Selected()
			fmt.Fprintf(cmd.OutOrStdout(), "Comment added to %s (%d total)\n", is.ID, len(is.Comments))
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show issue counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client := a.session(cmd)
			s, err := client.Stats(commandContext(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			rows := []struct {
				label string
				n     int
			}{
				{"Open", s.Open},
				{"In Progress", s.InProgress},
				{"Resolved", s.Resolved},
				{"Closed", s.Closed},
				{"High/Critical open", s.HighCriticalOpen},
			}
			for _, r := range rows {
				fmt.Fprintf(w, "%-20s %d\n", r.label+":", r.n)
			}
			return nil
		},
	}
}

func printIssue(w io.Writer, is models.Issue) {
	fmt.Fprintf(w, "%s\n", is.Title)
	fmt.Fprintf(w, "ID:        %s\n", is.ID)
	fmt.Fprintf(w, "Status:    %s\n", is.Status)
	fmt.Fprintf(w, "Category:  %s\n", is.Category)
	fmt.Fprintf(w, "Priority:  %s\n", is.Priority)
	fmt.Fprintf(w, "Reporter:  %s <%s>\n", is.ReportedBy.Name, is.ReportedBy.Email)
	if is.Assigned() {
		fmt.Fprintf(w, "Assigned:  %s\n", is.AssignedTo)
	}
	if is.Resolution != "" {
		fmt.Fprintf(w, "Resolution: %s\n", is.Resolution)
	}
	fmt.Fprintf(w, "Created:   %s\n", is.CreatedAt.Format(time.RFC3339))
	if next := models.NextStatuses(is.Status); len(next) > 0 {
		names := make([]string, len(next))
		for i, s := range next {
			names[i] = string(s)
		}
		fmt.Fprintf(w, "Next:      %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", is.Description)

	if len(is.Attachments) > 0 {
		fmt.Fprintln(w, "\nAttachments:")
		for _, at := range is.Attachments {
			fmt.Fprintf(w, "  %s (%d bytes) %s\n", at.Filename, at.Size, at.URL)
		}
	}
	if len(is.Comments) > 0 {
		fmt.Fprintln(w, "\nComments:")
		for _, c := range is.Comments {
			author := c.Author
			if author == "" {
				author = "unknown"
			}
			fmt.Fprintf(w, "  [%s] %s: %s\n", c.CreatedAt.Format(time.RFC3339), author, c.Text)
		}
	}
}
