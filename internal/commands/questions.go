package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/productsiksha/pmsiksha/internal/models"
)

var (
	companyFlag  string
	fromDateFlag string
	toDateFlag   string

	companiesCategoryFlag string
	companiesFromFlag     string
	companiesToFlag       string
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List question categories",
	RunE:  runCategories,
}

var questionsCmd = &cobra.Command{
	Use:   "questions <category>",
	Short: "List questions in a category",
	Long: `List the questions in a category. Completed questions appear first,
ordered by when you completed them; the rest follow newest first.

Categories are addressed by their path (see 'pmsiksha categories').

Examples:
  pmsiksha questions product-design
  pmsiksha questions execution-metrics --company Google
  pmsiksha questions product-strategy --from 2024-01-01 --to 2024-06-30`,
	Args: cobra.ExactArgs(1),
	RunE: runQuestions,
}

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies usable with the --company filter",
	RunE:  runCompanies,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <question-id>",
	Short: "Mark a question as completed (or not)",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggle,
}

func init() {
	questionsCmd.Flags().StringVar(&companyFlag, "company", "", "Filter by normalized company name")
	questionsCmd.Flags().StringVar(&fromDateFlag, "from", "", "Only questions on or after this date (YYYY-MM-DD)")
	questionsCmd.Flags().StringVar(&toDateFlag, "to", "", "Only questions on or before this date (YYYY-MM-DD)")

	companiesCmd.Flags().StringVar(&companiesCategoryFlag, "category", "", "Only companies with questions in this category")
	companiesCmd.Flags().StringVar(&companiesFromFlag, "from", "", "Only companies with questions on or after this date (YYYY-MM-DD)")
	companiesCmd.Flags().StringVar(&companiesToFlag, "to", "", "Only companies with questions on or before this date (YYYY-MM-DD)")
}

func runCategories(cmd *cobra.Command, args []string) error {
	// Catalog browsing needs no login
	client, _, err := newClient()
	if err != nil {
		return err
	}

	spin := newSpinner("Loading categories")
	spin.start()

	categories, err := client.Categories()
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Failed to load categories"))
		return fmt.Errorf("failed to load categories: %w", err)
	}
	spin.stopWithSuccess(fmt.Sprintf("%d categories", len(categories)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tPATH\tQUESTIONS")
	_, _ = fmt.Fprintln(w, "--------\t----\t---------")
	for _, cat := range categories {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", cat.Name, cat.Path, cat.Count)
	}
	return w.Flush()
}

func runCompanies(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	spin := newSpinner("Loading companies")
	spin.start()

	companies, err := client.Companies(models.CompanyFilter{
		Category: companiesCategoryFlag,
		FromDate: companiesFromFlag,
		ToDate:   companiesToFlag,
	})
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Failed to load companies"))
		return fmt.Errorf("failed to load companies: %w", err)
	}
	spin.stopWithSuccess(fmt.Sprintf("%d companies", len(companies)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COMPANY\tQUESTIONS")
	_, _ = fmt.Fprintln(w, "-------\t---------")
	for _, co := range companies {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", co.Name, co.Count)
	}
	return w.Flush()
}

func currentFilter() models.QuestionFilter {
	return models.QuestionFilter{
		Company:  companyFlag,
		FromDate: fromDateFlag,
		ToDate:   toDateFlag,
	}
}

func runQuestions(cmd *cobra.Command, args []string) error {
	client, _, err := newAuthedClient()
	if err != nil {
		return err
	}

	slug := args[0]

	spin := newSpinner("Loading questions")
	spin.start()

	list, err := client.Questions(slug, currentFilter())
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Failed to load questions"))
		return fmt.Errorf("failed to load questions: %w", err)
	}
	spin.stopWithSuccess(fmt.Sprintf("%d questions in %s", list.Count, list.Category))

	if len(list.Questions) == 0 {
		fmt.Println("No questions match.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDONE\tQUESTION\tCOMPANY\tDATE")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t-------\t----")
	for _, q := range list.Questions {
		done := " "
		if q.IsCompleted {
			done = "x"
		}
		question := q.Question
		if len(question) > 60 {
			question = question[:60] + "..."
		}
		date := ""
		if ts, ok := models.ParseQuestionTimestamp(q.Timestamp); ok {
			date = ts.Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(w, "%d\t[%s]\t%s\t%s\t%s\n", q.ID, done, question, q.CompanyNormalized, date)
	}
	return w.Flush()
}

func runToggle(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid question id %q", args[0])
	}

	client, _, err := newAuthedClient()
	if err != nil {
		return err
	}

	completed, err := client.ToggleCompletion(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Toggle failed"))
		return fmt.Errorf("toggle failed: %w", err)
	}

	if completed {
		fmt.Printf("Question %d marked as completed.\n", id)
	} else {
		fmt.Printf("Question %d marked as not completed.\n", id)
	}
	return nil
}
