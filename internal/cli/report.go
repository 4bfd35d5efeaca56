package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/issueapi"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/validation"
)

func (a *app) reportCmd() *cobra.Command {
	var (
		in    models.NewIssue
		cat   string
		prio  string
		files []string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report a new issue",
		Long: `Report a problem with the registration site.

Up to 5 files of at most 5MB each can be attached with --file.

Example:
  issuectl report --title "Payment page times out" \
    --description "After entering card details the page spins and fails." \
    --category Payment --priority High \
    --name "Asha Menon" --email asha@example.com --file receipt.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			ctrl, _ := a.session(cmd)
			defer ctrl.Close()
			form := ctrl.Report()

			var err error
			if in.Category, err = parseCategory(cat); err != nil {
				return err
			}
			if in.Priority, err = parsePriority(prio); err != nil {
				return err
			}
			form.SetValues(in)

			uploads := make([]models.Upload, 0, len(files))
			for _, path := range files {
				up, err := issueapi.FileUpload(path)
				if err != nil {
					return err
				}
				uploads = append(uploads, up)
			}
			if err := form.SelectFiles(uploads); err != nil {
				return err
			}

			issue, err := form.Submit(ctx)
			if err != nil {
				var fe validation.FieldErrors
				if errors.As(err, &fe) {
					for _, k := range fe.Keys() {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", k, fe[k])
					}
					return errors.New("report is not valid")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reported issue %s\n", issue.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "short summary (5-200 characters)")
	f.StringVar(&in.Description, "description", "", "what happened (20-5000 characters)")
	f.StringVar(&cat, "category", "", "Technical, Content, Payment, Registration or Other")
	f.StringVar(&prio, "priority", string(models.DefaultPriority), "Low, Medium, High or Critical")
	f.StringVar(&in.ReportedBy.Name, "name", "", "your name")
	f.StringVar(&in.ReportedBy.Email, "email", "", "your email")
	f.StringVar(&in.ReportedBy.Phone, "phone", "", "your phone (optional)")
	f.StringArrayVar(&files, "file", nil, "attach a file (repeatable)")
	return cmd
}
