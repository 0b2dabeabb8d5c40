package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Sign in to the Quick-Post server with a magic link.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a magic link",
	Long: `Sign in with a magic link.

Examples:
  quickpost auth login --email you@example.com   # request a link, then paste the token
  quickpost auth login --token <token>           # redeem a token you already have`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who you are signed in as",
	RunE:  runStatus,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	loginCmd.Flags().String("email", "", "Request a magic link for this email")
	loginCmd.Flags().String("token", "", "Redeem a magic link token")
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	email, _ := cmd.Flags().GetString("email")
	token, _ := cmd.Flags().GetString("token")

	if token == "" {
		if email == "" {
			return fmt.Errorf("either --email or --token is required")
		}

		fmt.Fprintf(out, "🔄 Requesting magic link for %s...\n", email)
		if err := c.RequestMagicLink(ctx, email); err != nil {
			return err
		}
		fmt.Fprintln(out, "📬 Magic link sent! Check your email (or the server log in development).")

		token, err = promptToken(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("token required")
		}
	}

	fmt.Fprintln(out, "🔄 Verifying magic link...")
	res, err := c.VerifyMagicLink(ctx, token)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Signed in as %s (until %s)\n", res.User.Email, res.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

// promptToken reads the token without echo when stdin is a terminal.
func promptToken(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter magic link token: ")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	if !c.IsLoggedIn() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}

	if err := c.Logout(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Logged out successfully.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	st := c.Status()

	fmt.Fprintf(out, "Server: %s\n", st.ServerURL)
	if !c.IsLoggedIn() {
		fmt.Fprintln(out, "Status: not logged in")
		return nil
	}

	me, err := c.Me(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Status: logged in as %s\n", me.Email)
	fmt.Fprintf(out, "User:   %s\n", me.ID)
	if !st.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Expires: %s\n", st.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}
