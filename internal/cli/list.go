package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List stored receipts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), cmd, rootOpts, slog.LevelWarn)
			if err != nil {
				return err
			}
			defer app.Close()

			receipts, err := app.Receipts(cmd.Context())
			if err != nil {
				return commandError("listing receipts", err)
			}

			if rootOpts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), receipts)
			}
			if len(receipts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No receipts stored.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "NUMBER", "CREATED", "DOMAINS").
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				})
			for _, r := range receipts {
				names := make([]string, len(r.Domains))
				for i, d := range r.Domains {
					names[i] = d.Name
				}
				t.Row(r.ID.String(), r.ReceiptNumber, r.CreatedAt.Format(time.DateTime), strings.Join(names, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}

	return cmd
}
