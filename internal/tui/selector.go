package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/productsiksha/pmsiksha/internal/models"
)

// QuestionBrowser defines the catalog operations the selector needs
type QuestionBrowser interface {
	Categories() ([]models.Category, error)
	Questions(categorySlug string, filter models.QuestionFilter) (*models.QuestionList, error)
	ToggleCompletion(questionID int) (bool, error)
}

type categoriesLoadedMsg struct {
	categories []models.Category
	err        error
}

type questionsLoadedMsg struct {
	list *models.QuestionList
	err  error
}

type toggledMsg struct {
	questionID int
	completed  bool
	err        error
}

// selector stages
type selectorStage int

const (
	stageCategories selectorStage = iota
	stageQuestions
)

// SelectorModel is the two-stage question browser: pick a category, then a
// question within it.
type SelectorModel struct {
	browser QuestionBrowser
	filter  models.QuestionFilter

	stage      selectorStage
	categories []models.Category
	questions  []models.Question
	category   models.Category

	cursor     int
	textFilter string

	loading   bool
	err       error
	confirmed bool
	selected  models.Question

	width  int
	height int
	ready  bool
}

// NewSelectorModel creates a question browser
func NewSelectorModel(browser QuestionBrowser, filter models.QuestionFilter) SelectorModel {
	return SelectorModel{
		browser: browser,
		filter:  filter,
		loading: true,
	}
}

// Init starts loading the category list
func (m SelectorModel) Init() tea.Cmd {
	return m.loadCategories()
}

func (m SelectorModel) loadCategories() tea.Cmd {
	return func() tea.Msg {
		categories, err := m.browser.Categories()
		return categoriesLoadedMsg{categories: categories, err: err}
	}
}

func (m SelectorModel) loadQuestions(slug string) tea.Cmd {
	return func() tea.Msg {
		list, err := m.browser.Questions(slug, m.filter)
		return questionsLoadedMsg{list: list, err: err}
	}
}

func (m SelectorModel) toggleQuestion(id int) tea.Cmd {
	return func() tea.Msg {
		completed, err := m.browser.ToggleCompletion(id)
		return toggledMsg{questionID: id, completed: completed, err: err}
	}
}

// Update handles messages and updates the model
func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case categoriesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.categories = msg.categories
		}

	case questionsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.stage = stageCategories
		} else {
			m.questions = msg.list.Questions
			m.stage = stageQuestions
			m.cursor = 0
			m.textFilter = ""
		}

	case toggledMsg:
		if msg.err != nil {
			m.err = msg.err
			break
		}
		for i := range m.questions {
			if m.questions[i].ID == msg.questionID {
				m.questions[i].IsCompleted = msg.completed
			}
		}

	case tea.KeyMsg:
		if m.loading {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m SelectorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.stage == stageQuestions {
			m.stage = stageCategories
			m.questions = nil
			m.cursor = 0
			m.textFilter = ""
			m.err = nil
			return m, nil
		}
		return m, tea.Quit

	case "up", "ctrl+p":
		items := m.itemCount()
		if items > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = items - 1
			}
		}

	case "down", "ctrl+n":
		items := m.itemCount()
		if items > 0 {
			m.cursor++
			if m.cursor >= items {
				m.cursor = 0
			}
		}

	case "enter":
		if m.stage == stageCategories {
			if len(m.categories) > 0 && m.cursor < len(m.categories) {
				m.category = m.categories[m.cursor]
				m.loading = true
				m.err = nil
				return m, m.loadQuestions(m.category.Path)
			}
			return m, nil
		}
		filtered := m.filteredQuestions()
		if len(filtered) > 0 && m.cursor < len(filtered) {
			m.selected = filtered[m.cursor]
			m.confirmed = true
			return m, tea.Quit
		}

	case "tab":
		if m.stage == stageQuestions {
			filtered := m.filteredQuestions()
			if len(filtered) > 0 && m.cursor < len(filtered) {
				return m, m.toggleQuestion(filtered[m.cursor].ID)
			}
		}

	case "backspace":
		if m.stage == stageQuestions && len(m.textFilter) > 0 {
			m.textFilter = m.textFilter[:len(m.textFilter)-1]
			m.cursor = 0
		}

	default:
		// Typing narrows the question list
		if m.stage == stageQuestions && len(msg.String()) == 1 {
			r := []rune(msg.String())[0]
			if r >= ' ' && r <= '~' {
				m.textFilter += msg.String()
				m.cursor = 0
			}
		}
	}

	return m, nil
}

func (m SelectorModel) itemCount() int {
	if m.stage == stageCategories {
		return len(m.categories)
	}
	return len(m.filteredQuestions())
}

// filteredQuestions returns the questions matching the typed filter
func (m SelectorModel) filteredQuestions() []models.Question {
	if m.textFilter == "" {
		return m.questions
	}

	filter := strings.ToLower(m.textFilter)
	var filtered []models.Question
	for _, q := range m.questions {
		if strings.Contains(strings.ToLower(q.Question), filter) ||
			strings.Contains(strings.ToLower(q.CompanyNormalized), filter) {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// View renders the TUI
func (m SelectorModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}
	if m.loading {
		return loadingStyle.Render("  Loading...")
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, m.renderHeader(contentWidth))

	if m.stage == stageCategories {
		sections = append(sections, m.renderCategories(contentWidth))
	} else {
		sections = append(sections, m.renderQuestions(contentWidth))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SelectorModel) renderHeader(width int) string {
	title := titleStyle.Render("Question Browser")
	var subtitle string
	if m.stage == stageQuestions {
		subtitle = subtitleStyle.Render("  " + m.category.Name)
	}
	return selectorHeaderStyle.Width(width).Render(title + subtitle)
}

func (m SelectorModel) renderCategories(width int) string {
	var items []string
	if len(m.categories) == 0 {
		items = append(items, hintStyle.Render("  No categories available"))
	}
	for i, cat := range m.categories {
		cursor := "  "
		style := selectorItemStyle
		if i == m.cursor {
			cursor = selectorCursorStyle.Render("> ")
			style = selectorSelectedStyle
		}
		count := selectorValueStyle.Render(fmt.Sprintf(" (%d)", cat.Count))
		items = append(items, cursor+style.Render(cat.Name)+count)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)
	return selectorPanelStyle.Width(width).Render(content)
}

func (m SelectorModel) renderQuestions(width int) string {
	var lines []string

	if m.textFilter != "" {
		lines = append(lines, inputLabelStyle.Render("Filter: ")+m.textFilter+"_", "")
	}

	filtered := m.filteredQuestions()
	if len(filtered) == 0 {
		lines = append(lines, hintStyle.Render("  No questions match"))
	}

	maxItems := m.height - 10
	if maxItems < 5 {
		maxItems = 5
	}
	start := 0
	if m.cursor >= maxItems {
		start = m.cursor - maxItems + 1
	}
	end := start + maxItems
	if end > len(filtered) {
		end = len(filtered)
	}

	if start > 0 {
		lines = append(lines, hintStyle.Render("  ..."))
	}

	for i := start; i < end; i++ {
		q := filtered[i]
		cursor := "  "
		style := selectorItemStyle
		if i == m.cursor {
			cursor = selectorCursorStyle.Render("> ")
			style = selectorSelectedStyle
		}

		mark := "[ ]"
		markStyle := selectorValueStyle
		if q.IsCompleted {
			mark = "[x]"
			markStyle = completedStyle
		}

		text := q.Question
		maxText := width - 20
		if maxText > 10 && len(text) > maxText {
			text = text[:maxText-3] + "..."
		}

		company := ""
		if q.CompanyNormalized != "" {
			company = hintStyle.Render(" - " + q.CompanyNormalized)
		}

		lines = append(lines, cursor+markStyle.Render(mark)+" "+style.Render(text)+company)
	}

	if end < len(filtered) {
		lines = append(lines, hintStyle.Render("  ..."))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return selectorPanelStyle.Width(width).Render(content)
}

func (m SelectorModel) renderStatusBar(width int) string {
	shortcuts := []string{
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Back"),
	}
	if m.stage == stageQuestions {
		shortcuts = append(shortcuts,
			statusKeyStyle.Render("Tab")+statusDescStyle.Render(" Toggle done"),
			statusKeyStyle.Render("type")+statusDescStyle.Render(" Filter"))
	}

	bar := strings.Join(shortcuts, "  |  ")
	return selectorStatusStyle.Width(width).Render(bar)
}

// Result returns the selected question and whether the user confirmed
func (m SelectorModel) Result() (models.Question, bool) {
	return m.selected, m.confirmed
}

// RunQuestionSelector starts the question browser and returns the selection
func RunQuestionSelector(browser QuestionBrowser, filter models.QuestionFilter) (models.Question, bool, error) {
	m := NewSelectorModel(browser, filter)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return models.Question{}, false, err
	}

	if sm, ok := finalModel.(SelectorModel); ok {
		selected, confirmed := sm.Result()
		return selected, confirmed, nil
	}
	return models.Question{}, false, nil
}
