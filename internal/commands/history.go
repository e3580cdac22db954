package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/productsiksha/pmsiksha/internal/chat"
	"github.com/productsiksha/pmsiksha/internal/config"
	"github.com/productsiksha/pmsiksha/internal/render"
)

var historyClearAllFlag bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved practice conversations",
	Long:  `View and manage the practice conversations saved under ~/.pmsiksha/chats.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <question-id>",
	Short: "Show a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear [question-id]",
	Short: "Delete saved conversations",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryClear,
}

func init() {
	historyClearCmd.Flags().BoolVar(&historyClearAllFlag, "all", false, "Delete every saved conversation")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// openChatStore opens the on-disk conversation store
func openChatStore() (*chat.Store, string, error) {
	chatsDir, err := config.GetChatsDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open chat storage: %w", err)
	}
	kv, err := chat.NewFileKV(chatsDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open chat storage: %w", err)
	}
	return chat.NewStore(kv), chatsDir, nil
}

// savedKeys lists the conversation keys present on disk
func savedKeys(chatsDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(chatsDir, "*.json"))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(matches))
	for _, match := range matches {
		keys = append(keys, strings.TrimSuffix(filepath.Base(match), ".json"))
	}
	return keys, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, chatsDir, err := openChatStore()
	if err != nil {
		return err
	}

	keys, err := savedKeys(chatsDir)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}
	if len(keys) == 0 {
		fmt.Println("No saved conversations.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "QUESTION\tTURNS\tLAST ACTIVITY")
	_, _ = fmt.Fprintln(w, "--------\t-----\t-------------")

	for _, key := range keys {
		turns := store.Load(key)
		if len(turns) == 0 {
			continue
		}
		last := turns[len(turns)-1].CreatedAt.Format("2006-01-02 15:04")
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", key, len(turns), last)
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid question id %q", args[0])
	}

	store, _, err := openChatStore()
	if err != nil {
		return err
	}

	turns := store.Load(chat.ContextKey(id))
	if len(turns) == 0 {
		fmt.Printf("No saved conversation for question %d.\n", id)
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	}

	width := getTerminalWidth() - 4
	if width < 40 {
		width = 40
	}
	opts := render.FromConfig(cfg).WithWidth(width)

	for i, turn := range turns {
		label := "You"
		if turn.Role == chat.RoleAssistant {
			label = "Coach"
		}
		fmt.Printf("[%d] %s (%s):\n", i+1, label, turn.CreatedAt.Format("2006-01-02 15:04"))

		if len(turn.Attachments) > 0 {
			names := make([]string, 0, len(turn.Attachments))
			for _, att := range turn.Attachments {
				names = append(names, att.FileName)
			}
			fmt.Printf("  Attachments: %s\n", strings.Join(names, ", "))
		}

		if turn.Role == chat.RoleAssistant {
			rendered, err := render.Markdown(turn.Content, opts)
			if err != nil {
				rendered = turn.Content
			}
			fmt.Println(strings.TrimRight(rendered, "\n"))
		} else {
			fmt.Printf("  %s\n", turn.Content)
		}
		fmt.Println()
	}

	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, chatsDir, err := openChatStore()
	if err != nil {
		return err
	}

	if historyClearAllFlag {
		keys, err := savedKeys(chatsDir)
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", err)
		}
		for _, key := range keys {
			if err := store.Clear(key); err != nil {
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
		}
		fmt.Printf("Deleted %d conversations.\n", len(keys))
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("pass a question id or --all")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid question id %q", args[0])
	}

	if err := store.Clear(chat.ContextKey(id)); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	fmt.Printf("Deleted conversation for question %d.\n", id)
	return nil
}
