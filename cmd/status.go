package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vietdv277/s3du/internal/aws"
	"github.com/vietdv277/s3du/internal/config"
	"github.com/vietdv277/s3du/internal/ui"
	"github.com/vietdv277/s3du/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved settings and authentication status",
	Long: `Display the profile, region, backend and endpoint s3du would use, and
verify the credentials with STS.

Examples:
  s3du status
  s3du status --profile prod --region eu-west-1`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	backend, err := types.ParseBackend(viper.GetString("backend"))
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Current Status")
	fmt.Fprintln(out, ui.MutedStyle.Render("─────────────────────────────────"))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Profile:  %s\n", formatUnset(profile))
	fmt.Fprintf(out, "Backend:  %s\n", ui.NameStyle.Render(string(backend)))
	if endpoint := viper.GetString("endpoint"); endpoint != "" {
		fmt.Fprintf(out, "Endpoint: %s\n", endpoint)
	}
	fmt.Fprintf(out, "Config:   %s\n", ui.MutedStyle.Render(config.GetConfigPath()))
	fmt.Fprintf(out, "Profiles: %s\n", formatProfiles(aws.ListProfiles()))

	client, err := newClient(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "Region:   %s\n", formatUnset(region))
		fmt.Fprintln(out)
		printAuthFailure(out, err)
		return nil
	}

	fmt.Fprintf(out, "Region:   %s\n", formatUnset(client.Region()))
	fmt.Fprintln(out)

	// Try to get caller identity
	identity, err := client.CallerIdentity(cmd.Context())
	if err != nil {
		printAuthFailure(out, err)
		return nil
	}

	fmt.Fprintf(out, "Auth:     %s\n", ui.TotalStyle.Render("✓ Authenticated"))
	fmt.Fprintf(out, "Account:  %s\n", identity.Account)
	fmt.Fprintf(out, "User:     %s\n", identity.UserID)
	if identity.Arn != "" {
		fmt.Fprintf(out, "ARN:      %s\n", ui.MutedStyle.Render(identity.Arn))
	}

	return nil
}

func printAuthFailure(out io.Writer, err error) {
	fmt.Fprintf(out, "Auth:     %s\n", ui.FailedStyle.Render("✗ Not authenticated"))
	fmt.Fprintf(out, "          %s\n", ui.MutedStyle.Render(err.Error()))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To authenticate:")
	if profile != "" {
		fmt.Fprintf(out, "  aws sso login --profile %s\n", profile)
	} else {
		fmt.Fprintln(out, "  aws configure")
	}
}

func formatProfiles(profiles []aws.Profile) string {
	if len(profiles) == 0 {
		return ui.MutedStyle.Render("(none found)")
	}

	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.Name == profile {
			names = append(names, ui.NameStyle.Render(p.Name))
			continue
		}
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func formatUnset(s string) string {
	if s == "" {
		return ui.MutedStyle.Render("(not set)")
	}
	return s
}
