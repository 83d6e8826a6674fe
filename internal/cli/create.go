package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/raseed/domain"
)

// CreateResult is the JSON output of the create command.
type CreateResult struct {
	Receipt *domain.Receipt         `json:"receipt,omitempty"`
	Errors  domain.ValidationErrors `json:"errors,omitempty"`
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var domains []string
	var twitter string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create and store a receipt",
		Long: `Create a receipt for one or more domains and store it.

Each --domain takes comma separated key=value pairs:

  raseed create --domain name=example.com,date=2024-01-15,notes=renewed --twitter acme`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := domain.RawReceiptForm{TwitterHandle: twitter}
			for _, arg := range domains {
				entry, err := parseDomainFlag(arg)
				if err != nil {
					return &ExitError{Code: ExitCommandError, Message: "parsing --domain", Err: err}
				}
				raw.Domains = append(raw.Domains, entry)
			}

			app, err := openApp(cmd.Context(), cmd, rootOpts, slog.LevelWarn)
			if err != nil {
				return err
			}
			defer app.Close()

			receipt, err := app.Submit(cmd.Context(), raw)
			var verrs domain.ValidationErrors
			switch {
			case errors.As(err, &verrs):
				if rootOpts.Format == "json" {
					printJSON(cmd.OutOrStdout(), CreateResult{Errors: verrs})
				} else {
					for _, e := range verrs {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", e.Field, e.Message)
					}
				}
				return &ExitError{Code: ExitFailure, Message: "receipt rejected", Err: err}
			case err != nil:
				return commandError("creating receipt", err)
			}

			if rootOpts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), CreateResult{Receipt: receipt})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created receipt %s (%s)\n", receipt.ReceiptNumber, receipt.ID)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&domains, "domain", "d", nil, "domain as name=...,date=YYYY-MM-DD[,notes=...] (repeatable)")
	cmd.Flags().StringVarP(&twitter, "twitter", "t", "", "twitter handle shown on the receipt")

	return cmd
}

// parseDomainFlag reads "name=example.com,date=2024-01-15,notes=..." into a row.
// Notes run to the end of the value so they may contain commas.
func parseDomainFlag(arg string) (domain.RawDomainEntry, error) {
	var entry domain.RawDomainEntry
	rest := arg
	for rest != "" {
		var pair string
		if strings.HasPrefix(rest, "notes=") {
			pair, rest = rest, ""
		} else {
			pair, rest, _ = strings.Cut(rest, ",")
		}

		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return entry, fmt.Errorf("expected key=value, got %q", pair)
		}
		switch strings.TrimSpace(key) {
		case "name":
			entry.Name = value
		case "date", "registrationDate":
			entry.RegistrationDate = value
		case "notes":
			entry.Notes = value
		default:
			return entry, fmt.Errorf("unknown key %q", key)
		}
	}
	return entry, nil
}
