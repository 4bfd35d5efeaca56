package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

func (a *app) listCmd() *cobra.Command {
	var (
		status, category, priority string
		f                          models.IssueFilter
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issues, newest first",
		Long: `List issues matching the given filters, one page at a time.

Examples:
  issuectl list
  issuectl list --status open --category Payment
  issuectl list --search "card declined" --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if f.Status, err = parseStatus(status); err != nil {
				return err
			}
			if f.Category, err = parseCategory(category); err != nil {
				return err
			}
			if f.Priority, err = parsePriority(priority); err != nil {
				return err
			}

			ctrl, _ := a.session(cmd)
			defer ctrl.Close()
			if err := ctrl.Issues().SetFilter(commandContext(cmd), f); err != nil {
				return err
			}
			view := ctrl.Issues().View()
			if view.Page == nil {
				return fmt.Errorf("no page loaded")
			}
			printPage(cmd.OutOrStdout(), view.Page)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&status, "status", "", "Open, In Progress, Resolved or Closed")
	fl.StringVar(&category, "category", "", "Technical, Content, Payment, Registration or Other")
	fl.StringVar(&priority, "priority", "", "Low, Medium, High or Critical")
	fl.StringVar(&f.Search, "search", "", "match title or description")
	fl.IntVar(&f.Page, "page", 1, "page number")
	return cmd
}

func printPage(w io.Writer, p *models.IssuePage) {
	if len(p.Data) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return
	}
	fmt.Fprintf(w, "%-36s %-12s %-13s %-9s %s\n", "ID", "STATUS", "CATEGORY", "PRIORITY", "TITLE")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, is := range p.Data {
		fmt.Fprintf(w, "%-36s %-12s %-13s %-9s %s\n", is.ID, is.Status, is.Category, is.Priority, is.Title)
	}
	fmt.Fprintf(w, "\nPage %d of %d (%d issue(s))\n", p.Page, p.TotalPages, p.Total)
}

// ---- flag parsing ----

// canon folds case and treats '-' and '_' as spaces, so "in-progress"
// names In Progress.
func canon(s string) string {
	return strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s)))
}

func parseStatus(s string) (models.Status, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	for _, st := range models.Statuses {
		if canon(string(st)) == canon(s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func parseCategory(s string) (models.Category, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	for _, c := range models.Categories {
		if canon(string(c)) == canon(s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func parsePriority(s string) (models.Priority, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	for _, p := range models.Priorities {
		if canon(string(p)) == canon(s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}
