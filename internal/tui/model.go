package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/productsiksha/pmsiksha/internal/chat"
	"github.com/productsiksha/pmsiksha/internal/models"
	"github.com/productsiksha/pmsiksha/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// sendResultMsg carries the outcome of an in-flight send. The key pins the
// result to the conversation it started in.
type sendResultMsg struct {
	key  string
	text string
	err  error
}

// Model represents the practice chat TUI state
type Model struct {
	pipeline *chat.Pipeline
	sender   chat.Sender
	stager   *chat.Stager
	question models.Question

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	mode           InputMode
	loading        bool
	ready          bool
	err            error
	notice         string
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewPracticeModel creates the chat model for practicing one question
func NewPracticeModel(pipeline *chat.Pipeline, sender chat.Sender, stager *chat.Stager, question models.Question) Model {
	ta := textarea.New()
	ta.Placeholder = ModeNormal.Placeholder()
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		pipeline: pipeline,
		sender:   sender,
		stager:   stager,
		question: question,
		textarea: ta,
		spinner:  s,
		mode:     ModeNormal,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.textarea.SetWidth(contentWidth - 4)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
			m.textarea.SetWidth(contentWidth - 4)
		}
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if !m.loading {
				return m, tea.Quit
			}

		case "ctrl+t":
			m.mode = m.mode.Toggle()
			m.textarea.Placeholder = m.mode.Placeholder()
			m.notice = ""

		case "ctrl+s":
			if !m.loading {
				return m.submitDraft()
			}

		case "enter":
			if m.mode.SendsOnEnter() && !m.loading {
				return m.submitDraft()
			}
		}

	case sendResultMsg:
		m.loading = false
		if msg.err != nil {
			m.pipeline.Fail(msg.key)
		} else {
			m.pipeline.Complete(msg.key, msg.text)
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to the textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submitDraft interprets the editor content: slash commands run locally,
// anything else is submitted as an answer.
func (m Model) submitDraft() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())

	if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
		return m, tea.Quit
	}

	if strings.HasPrefix(input, "/") {
		return m.runCommand(input)
	}

	pending := m.stager.Pending()
	if _, err := m.pipeline.Begin(input, pending); err != nil {
		switch {
		case errors.Is(err, chat.ErrNothingToSend):
			// Blank draft, nothing to do
		case errors.Is(err, chat.ErrSendInFlight):
			m.notice = "Still waiting for feedback on the previous answer"
		default:
			m.err = err
		}
		return m, nil
	}

	key := m.pipeline.Key()
	m.textarea.Reset()
	m.stager.Clear()
	m.loading = true
	m.err = nil
	m.notice = ""
	m.animationFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	send := func() tea.Msg {
		text, err := m.sender.SendMessage(input, pending)
		return sendResultMsg{key: key, text: text, err: err}
	}

	return m, tea.Batch(send, m.spinner.Tick, animationTick())
}

// runCommand executes a slash command typed into the editor
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	command := fields[0]
	args := fields[1:]

	m.textarea.Reset()
	m.err = nil
	m.notice = ""

	switch command {
	case "/attach":
		if len(args) == 0 {
			m.notice = "Usage: /attach <file> [file...]"
			break
		}
		if err := m.stager.Stage(args); err != nil {
			m.err = err
			break
		}
		m.notice = fmt.Sprintf("Attached %d file(s)", len(args))

	case "/detach":
		if len(args) != 1 {
			m.notice = "Usage: /detach <number>"
			break
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > m.stager.Len() {
			m.notice = "No such attachment"
			break
		}
		m.stager.Remove(n - 1)
		m.notice = "Attachment removed"

	case "/clear":
		if m.loading {
			m.notice = "Cannot clear while waiting for feedback"
			break
		}
		if err := m.pipeline.Clear(); err != nil {
			m.err = err
			break
		}
		m.stager.Clear()
		m.updateViewport()
		m.notice = "Conversation cleared"

	case "/mode":
		m.mode = m.mode.Toggle()
		m.textarea.Placeholder = m.mode.Placeholder()
		m.notice = fmt.Sprintf("Switched to %s mode", m.mode)

	case "/help":
		m.notice = "/attach <file>  /detach <n>  /clear  /mode  /quit"

	default:
		m.notice = fmt.Sprintf("Unknown command %s", command)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	questionText := m.question.Question
	maxTitle := contentWidth - 20
	if maxTitle > 10 && len(questionText) > maxTitle {
		questionText = questionText[:maxTitle-3] + "..."
	}
	headerParts := []string{
		titleStyle.Render("Practice"),
		hintStyle.Render("  |  "),
		subtitleStyle.Render(questionText),
	}
	if m.question.CompanyNormalized != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  |  "),
			selectorValueStyle.Render(m.question.CompanyNormalized),
		)
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages area
	var messagesContent string
	if len(m.pipeline.Turns()) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Attachment strip
	if strip := m.renderAttachmentStrip(); strip != "" {
		sections = append(sections, strip)
	}

	// Input area
	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		label := inputLabelStyle.Render("You")
		if m.mode == ModeCompose {
			label += composeStyle.Render(" [compose]")
		}
		inputContent = lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	// Status bar
	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, hintStyle.Render("  "+m.notice))
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the empty-conversation screen
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	title := welcomeTitleStyle.Width(width).Render("Ready to practice")
	question := welcomeStyle.Width(width - 8).Render(m.question.Question)
	hint := hintStyle.Width(width).Align(lipgloss.Center).
		Render("Type your answer below. Attach supporting files with /attach.")

	content := lipgloss.JoinVertical(lipgloss.Center, "", title, "", question, "", hint)

	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderAttachmentStrip lists the staged attachments awaiting the next send
func (m Model) renderAttachmentStrip() string {
	pending := m.stager.Pending()
	if len(pending) == 0 {
		return ""
	}

	items := make([]string, 0, len(pending))
	for i, att := range pending {
		items = append(items, attachmentItemStyle.Render(fmt.Sprintf("%d:%s", i+1, att.Name)))
	}

	return attachmentStripStyle.Render("Attached  " + strings.Join(items, "  "))
}

// renderLoadingAnimation renders the waiting-for-feedback indicator
func (m Model) renderLoadingAnimation() string {
	frames := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	frame := frames[m.animationFrame%len(frames)]

	dots := strings.Repeat(".", (m.animationFrame/4)%4)
	return loadingStyle.Render(frame) +
		lipgloss.NewStyle().Foreground(colorText).Render(" Reviewing your answer"+dots)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	sendKey := "Enter"
	if m.mode == ModeCompose {
		sendKey = "Ctrl+S"
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{sendKey, "Send"},
		{"Ctrl+T", m.mode.Toggle().String() + " mode"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  |  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled turns
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for i, turn := range m.pipeline.Turns() {
		if i > 0 {
			content.WriteString("\n")
		}

		if turn.Role == chat.RoleUser {
			label := userLabelStyle.Render("You")
			body := turn.Content
			if len(turn.Attachments) > 0 {
				names := make([]string, 0, len(turn.Attachments))
				for _, att := range turn.Attachments {
					names = append(names, att.FileName)
				}
				attachLine := attachmentItemStyle.Render("[" + strings.Join(names, ", ") + "]")
				if body == "" {
					body = attachLine
				} else {
					body += "\n" + attachLine
				}
			}
			bubble := userBubbleStyle.Width(bubbleWidth).Render(body)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("Coach")

			rendered, err := render.MarkdownWithWidth(turn.Content, bubbleWidth-4)
			if err != nil {
				rendered = turn.Content
			}
			rendered = strings.TrimRight(rendered, "\n")

			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunPractice starts the practice chat TUI for one question
func RunPractice(pipeline *chat.Pipeline, sender chat.Sender, stager *chat.Stager, question models.Question) error {
	m := NewPracticeModel(pipeline, sender, stager, question)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
