package cmd

import (
    "fmt"

    "github.com/spf13/cobra"
)

var (
    Version   = "dev"
    Commit    = "none"
    BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
    Use:   "version",
    Short: "Print version information",
    Args:  cobra.NoArgs,
    Run: func(cmd *cobra.Command, args []string) {
        out := cmd.OutOrStdout()
        fmt.Fprintf(out, "s3du\n")
        fmt.Fprintf(out, "  Version:    %s\n", Version)
        fmt.Fprintf(out, "  Commit:     %s\n", Commit)
        fmt.Fprintf(out, "  Build Date: %s\n", BuildDate)
    },
}

func init() {
    rootCmd.AddCommand(versionCmd)
}
