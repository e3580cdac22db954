package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/productsiksha/pmsiksha/internal/config"
	"github.com/productsiksha/pmsiksha/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show the current configuration, stored in ~/.pmsiksha/config.json.

Use 'config set' to change a value:
  pmsiksha config set theme catppuccin
  pmsiksha config set clipboard true
  pmsiksha config set prompt "Grade my answer out of 10."`,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting. Available keys:

  base-url    Backend API endpoint
  prompt      Default feedback request sent with your answers
  clipboard   Copy the latest feedback to the clipboard after a session (true/false)
  theme       TUI color theme (tokyonight, catppuccin, dark)
  style       Markdown style for rendered feedback (dark, light, or a theme file)
  verbose     Detailed logging output (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tVALUE")
	_, _ = fmt.Fprintln(w, "---\t-----")
	_, _ = fmt.Fprintf(w, "base-url\t%s\n", cfg.BaseURL)
	_, _ = fmt.Fprintf(w, "prompt\t%s\n", truncateValue(cfg.FeedbackPrompt, 60))
	_, _ = fmt.Fprintf(w, "clipboard\t%t\n", cfg.CopyToClipboard)
	_, _ = fmt.Fprintf(w, "theme\t%s\n", cfg.TUITheme)
	_, _ = fmt.Fprintf(w, "style\t%s\n", cfg.Markdown.Style)
	_, _ = fmt.Fprintf(w, "verbose\t%t\n", cfg.Verbose)
	return w.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	}

	if err := applyConfigValue(&cfg, key, value); err != nil {
		return err
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("%s set to %s\n", key, value)
	return nil
}

// applyConfigValue updates one configuration field by key name
func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "base-url":
		cfg.BaseURL = value
	case "prompt":
		cfg.FeedbackPrompt = value
	case "clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("clipboard must be true or false, got %q", value)
		}
		cfg.CopyToClipboard = b
	case "theme":
		found := false
		for _, name := range tui.ThemeNames() {
			if name == value {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown theme %q (available: %v)", value, tui.ThemeNames())
		}
		cfg.TUITheme = value
	case "style":
		cfg.Markdown.Style = value
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose must be true or false, got %q", value)
		}
		cfg.Verbose = b
	default:
		return fmt.Errorf("unknown key %q (see 'pmsiksha config set --help')", key)
	}
	return nil
}
