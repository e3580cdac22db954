package commands

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/productsiksha/pmsiksha/internal/api"
	"github.com/productsiksha/pmsiksha/internal/chat"
	"github.com/productsiksha/pmsiksha/internal/config"
	"github.com/productsiksha/pmsiksha/internal/models"
	"github.com/productsiksha/pmsiksha/internal/tui"
)

var (
	practiceCategoryFlag string
	practiceQuestionFlag int
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Answer a question and get AI feedback",
	Long: `Start an interactive practice session. Without flags, a browser opens
to pick a category and question. Your answers are reviewed by the AI
coach, and the conversation is saved per question under ~/.pmsiksha/chats.

In the session:
  Enter    sends your answer (Ctrl+T switches to compose mode)
  /attach  stages files to send with your next answer
  /clear   wipes the conversation for this question

Examples:
  pmsiksha practice
  pmsiksha practice -c product-design -q 42`,
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().StringVarP(&practiceCategoryFlag, "category", "c", "", "Category path of the question")
	practiceCmd.Flags().IntVarP(&practiceQuestionFlag, "question", "q", 0, "Question ID to practice")
}

func runPractice(cmd *cobra.Command, args []string) error {
	client, cfg, err := newAuthedClient()
	if err != nil {
		return err
	}

	tui.ApplyTheme(cfg.TUITheme)

	question, err := resolveQuestion(client)
	if err != nil {
		return err
	}
	if question.ID == 0 {
		// Selection cancelled
		return nil
	}

	chatsDir, err := config.GetChatsDir()
	if err != nil {
		return fmt.Errorf("failed to open chat storage: %w", err)
	}
	kv, err := chat.NewFileKV(chatsDir)
	if err != nil {
		return fmt.Errorf("failed to open chat storage: %w", err)
	}
	store := chat.NewStore(kv)

	session := api.NewFeedbackSession(client, question, cfg.FeedbackPrompt)
	key := chat.ContextKey(question.ID)
	pipeline := chat.NewPipeline(store, session, key)
	stager := chat.NewStager(chat.NewPreviewRegistry())

	if err := tui.RunPractice(pipeline, session, stager, question); err != nil {
		return fmt.Errorf("practice session failed: %w", err)
	}

	// Copy the latest feedback after the session ends
	if cfg.CopyToClipboard {
		if feedback := lastFeedback(store, key); feedback != "" {
			if err := clipboard.WriteAll(feedback); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to copy feedback to clipboard: %v\n", err)
			} else {
				fmt.Fprintln(os.Stderr, "Latest feedback copied to clipboard.")
			}
		}
	}

	return nil
}

// resolveQuestion picks the question to practice, either from flags or
// interactively. A zero-value question means the user cancelled.
func resolveQuestion(client *api.Client) (models.Question, error) {
	if practiceQuestionFlag > 0 {
		if practiceCategoryFlag == "" {
			return models.Question{}, fmt.Errorf("--question requires --category")
		}

		list, err := client.Questions(practiceCategoryFlag, models.QuestionFilter{})
		if err != nil {
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Failed to load questions"))
			return models.Question{}, fmt.Errorf("failed to load questions: %w", err)
		}
		for _, q := range list.Questions {
			if q.ID == practiceQuestionFlag {
				return q, nil
			}
		}
		return models.Question{}, fmt.Errorf("question %d not found in %s", practiceQuestionFlag, practiceCategoryFlag)
	}

	selected, confirmed, err := tui.RunQuestionSelector(client, models.QuestionFilter{})
	if err != nil {
		return models.Question{}, fmt.Errorf("question selection failed: %w", err)
	}
	if !confirmed {
		return models.Question{}, nil
	}
	return selected, nil
}

// lastFeedback returns the content of the most recent coach turn
func lastFeedback(store *chat.Store, key string) string {
	turns := store.Load(key)
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == chat.RoleAssistant && turns[i].Content != chat.ErrorReply {
			return turns[i].Content
		}
	}
	return ""
}
