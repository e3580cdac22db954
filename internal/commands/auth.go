package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/productsiksha/pmsiksha/internal/config"
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in and store a session token",
	Long: `Sign in with your email and password. The session token is stored in
~/.pmsiksha/credentials.json and used by all other commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := ""
		if len(args) > 0 {
			email = args[0]
		}
		return runLogin(email)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup [email]",
	Short: "Create an account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := ""
		if len(args) > 0 {
			email = args[0]
		}
		return runSignup(email)
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPasswd()
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearCredentials(); err != nil {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.LoadCredentials()
		if err != nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Println(creds.Email)
		return nil
	},
}

// promptLine reads one line from stdin with a prompt
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing it
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}

func runLogin(email string) error {
	var err error
	if email == "" {
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}

	spin := newSpinner("Signing in")
	spin.start()

	result, err := client.Login(email, password)
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Login failed"))
		return fmt.Errorf("login failed: %w", err)
	}
	spin.stopWithSuccess(fmt.Sprintf("Signed in as %s", result.User.Email))

	creds := config.Credentials{Token: result.Token, Email: result.User.Email}
	if err := config.SaveCredentials(&creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	return nil
}

func runSignup(email string) error {
	var err error
	if email == "" {
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}

	spin := newSpinner("Creating account")
	spin.start()

	result, err := client.Signup(email, password)
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Signup failed"))
		return fmt.Errorf("signup failed: %w", err)
	}
	spin.stopWithSuccess(fmt.Sprintf("Account created for %s", result.User.Email))

	creds := config.Credentials{Token: result.Token, Email: result.User.Email}
	if err := config.SaveCredentials(&creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	return nil
}

func runPasswd() error {
	creds, err := config.LoadCredentials()
	if err != nil {
		return fmt.Errorf("run 'pmsiksha login' first: %w", err)
	}

	current, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	next, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm new password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		return fmt.Errorf("passwords do not match")
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}

	spin := newSpinner("Changing password")
	spin.start()

	msg, err := client.ChangePassword(creds.Email, current, next)
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Password change failed"))
		return fmt.Errorf("password change failed: %w", err)
	}
	spin.stopWithSuccess(msg)

	return nil
}
