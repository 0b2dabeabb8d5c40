package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server [url]",
	Short: "Show or set the API server URL",
	Long: `Show or set the API server URL.

Examples:
  quickpost server                          # show the current server
  quickpost server https://api.example.com  # use another server`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), c.Status().ServerURL)
		return nil
	}

	if err := c.SetServer(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Server set to %s\n", c.Status().ServerURL)
	return nil
}
