// Package commands provides CLI commands for pmsiksha.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/productsiksha/pmsiksha/internal/api"
	"github.com/productsiksha/pmsiksha/internal/config"
	apierrors "github.com/productsiksha/pmsiksha/internal/errors"
)

var (
	// Global flags
	baseURLFlag string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pmsiksha",
	Short: "Practice product management interviews from the terminal",
	Long: `pmsiksha is a command-line client for the Product Siksha interview
practice service. Browse real PM interview questions by category, answer
them in an interactive chat, and get AI feedback on your answers.

Examples:
  pmsiksha login                        Sign in to your account
  pmsiksha categories                   List question categories
  pmsiksha questions product-design     List questions in a category
  pmsiksha practice                     Pick a question and start practicing
  pmsiksha practice -c behavioral -q 42 Practice a specific question
  pmsiksha history show 42              Review a past practice session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("pmsiksha %s (built %s)\n", Version, BuildTime)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Override the backend API endpoint")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(passwdCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(healthCmd)
}

// getBaseURL returns the backend endpoint (flag takes precedence over config)
func getBaseURL(cfg config.Config) string {
	if baseURLFlag != "" {
		return baseURLFlag
	}
	return cfg.BaseURL
}

// newClient builds an unauthenticated API client
func newClient() (*api.Client, config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	}

	client, err := api.NewClient(getBaseURL(cfg))
	if err != nil {
		return nil, cfg, err
	}
	return client, cfg, nil
}

// newAuthedClient builds a client carrying the stored session token
func newAuthedClient() (*api.Client, config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, cfg, fmt.Errorf("%w: run 'pmsiksha login' first", apierrors.ErrNotLoggedIn)
	}

	client, err := api.NewClient(getBaseURL(cfg), api.WithToken(creds.Token))
	if err != nil {
		return nil, cfg, err
	}
	return client, cfg, nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// formatErrorMessage formats an error with additional context from
// structured error types
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'pmsiksha login' to refresh your session"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your internet connection and try again"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again"))
	}

	return sb.String()
}

func truncateValue(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
