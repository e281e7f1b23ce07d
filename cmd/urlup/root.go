// Package main provides the entry point for the urlup CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes. A completed run maps its verdict to exitPass or
// exitFail; anything that prevents a verdict exits with exitUsage.
const (
	exitPass  = 0
	exitFail  = 1
	exitUsage = 2
)

// errCheckFailed signals a completed run whose verdict is fail. The
// report has already been written when this is returned, so Execute
// exits without printing anything further.
var errCheckFailed = errors.New("failure rate exceeded threshold")

// NewRootCmd creates the root command for urlup.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urlup [file|directory]...",
		Short: "Find URLs in files and verify they respond",
		Long: `urlup finds URLs in text files and verifies that each one responds
over HTTP. Broken links are reported with the file and line where they
first appear.

Files are scanned concurrently and duplicate URLs are checked once.
The exit code reflects the verdict, so urlup drops straight into CI:
0 when the run passes, 1 when the failure rate exceeds the threshold,
2 on usage or configuration errors.`,
		Version:       getVersion(),
		Args:          cobra.ArbitraryArgs,
		RunE:          runCheckCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// The root command doubles as check so "urlup FILE..." works.
	addCheckFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits the process with the status
// code the run earned.
func Execute() {
	os.Exit(executeRoot())
}

// executeRoot runs the root command and maps the result to an exit
// code. A check failure is silent because the report already said
// everything; other errors go to stderr.
func executeRoot() int {
	err := NewRootCmd().Execute()
	if err == nil {
		return exitPass
	}
	if errors.Is(err, errCheckFailed) {
		return exitFail
	}
	fmt.Fprintln(os.Stderr, err)
	return exitUsage
}
