package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/productsiksha/pmsiksha/internal/chat"
	"github.com/productsiksha/pmsiksha/internal/models"
)

// recordingSender captures sends and replies with a canned text
type recordingSender struct {
	reply    string
	err      error
	lastText string
	lastAtts []chat.PendingAttachment
	calls    int
}

func (s *recordingSender) SendMessage(text string, atts []chat.PendingAttachment) (string, error) {
	s.calls++
	s.lastText = text
	s.lastAtts = atts
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestModel(sender chat.Sender) (Model, *chat.Pipeline, *chat.Stager) {
	store := chat.NewStore(chat.NewMemKV())
	pipeline := chat.NewPipeline(store, sender, chat.ContextKey(1))
	stager := chat.NewStager(chat.NewPreviewRegistry())
	question := models.Question{ID: 1, Question: "How would you improve Maps?"}

	m := NewPracticeModel(pipeline, sender, stager, question)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return sized.(Model), pipeline, stager
}

func pressKey(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(key)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T", updated)
	}
	return model, cmd
}

func enterKey() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }
func ctrlT() tea.KeyMsg    { return tea.KeyMsg{Type: tea.KeyCtrlT} }
func ctrlS() tea.KeyMsg    { return tea.KeyMsg{Type: tea.KeyCtrlS} }

// runSend executes the command returned by a submit and feeds the resulting
// send outcome back into the model.
func runSend(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command from submit")
	}

	msg := findSendResult(cmd())
	if msg == nil {
		t.Fatal("no send result produced")
	}

	updated, _ := m.Update(*msg)
	return updated.(Model)
}

func findSendResult(msg tea.Msg) *sendResultMsg {
	switch msg := msg.(type) {
	case sendResultMsg:
		return &msg
	case tea.BatchMsg:
		for _, cmd := range msg {
			if cmd == nil {
				continue
			}
			if found := findSendResult(cmd()); found != nil {
				return found
			}
		}
	}
	return nil
}

func TestSubmit_AppendsBothTurns(t *testing.T) {
	sender := &recordingSender{reply: "Structure your answer with a framework."}
	m, pipeline, _ := newTestModel(sender)

	m.textarea.SetValue("I would add offline mode")
	m, cmd := pressKey(t, m, enterKey())

	if !m.loading {
		t.Error("model should be loading while the send is in flight")
	}
	if m.textarea.Value() != "" {
		t.Error("draft should clear on submit")
	}
	if turns := pipeline.Turns(); len(turns) != 1 || turns[0].Role != chat.RoleUser {
		t.Fatalf("expected optimistic user turn, got %+v", turns)
	}

	m = runSend(t, m, cmd)

	if m.loading {
		t.Error("loading should end when the result arrives")
	}
	turns := pipeline.Turns()
	if len(turns) != 2 || turns[1].Content != "Structure your answer with a framework." {
		t.Errorf("turns = %+v", turns)
	}
	if sender.lastText != "I would add offline mode" {
		t.Errorf("sender received %q", sender.lastText)
	}
}

func TestSubmit_FailureShowsErrorReply(t *testing.T) {
	sender := &recordingSender{err: errors.New("backend down")}
	m, pipeline, _ := newTestModel(sender)

	m.textarea.SetValue("my answer")
	m, cmd := pressKey(t, m, enterKey())
	m = runSend(t, m, cmd)

	turns := pipeline.Turns()
	if len(turns) != 2 || turns[1].Content != chat.ErrorReply {
		t.Errorf("expected error reply turn, got %+v", turns)
	}
	if m.err != nil {
		t.Error("send failures surface as a conversation turn, not a banner")
	}
}

func TestSubmit_EmptyDraftDoesNothing(t *testing.T) {
	sender := &recordingSender{}
	m, pipeline, _ := newTestModel(sender)

	m.textarea.SetValue("   ")
	m, _ = pressKey(t, m, enterKey())

	if m.loading {
		t.Error("blank draft must not start a send")
	}
	if len(pipeline.Turns()) != 0 {
		t.Error("blank draft must not append turns")
	}
	if sender.calls != 0 {
		t.Error("sender must not be called")
	}
}

func TestSubmit_InFlightGuard(t *testing.T) {
	sender := &recordingSender{reply: "ok"}
	m, pipeline, _ := newTestModel(sender)

	m.textarea.SetValue("first")
	m, _ = pressKey(t, m, enterKey())

	// Force a second submit while loading by clearing the flag; the
	// pipeline still holds the in-flight state.
	m.loading = false
	m.textarea.SetValue("second")
	m, _ = pressKey(t, m, enterKey())

	if len(pipeline.Turns()) != 1 {
		t.Errorf("second submit should be rejected, turns = %d", len(pipeline.Turns()))
	}
	if m.notice == "" {
		t.Error("rejection should leave a notice for the user")
	}
}

func TestSubmit_ConsumesStagedAttachments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("notes"), 0o644); err != nil {
		t.Fatal(err)
	}

	sender := &recordingSender{reply: "got it"}
	m, pipeline, stager := newTestModel(sender)

	if err := stager.Stage([]string{path}); err != nil {
		t.Fatal(err)
	}

	m.textarea.SetValue("see attached")
	m, cmd := pressKey(t, m, enterKey())
	m = runSend(t, m, cmd)

	if len(sender.lastAtts) != 1 || sender.lastAtts[0].Name != "notes.txt" {
		t.Errorf("sender attachments = %+v", sender.lastAtts)
	}
	if stager.Len() != 0 {
		t.Error("staged attachments should be consumed by the send")
	}
	if turns := pipeline.Turns(); len(turns[0].Attachments) != 1 {
		t.Error("user turn should record the attachment metadata")
	}
	_ = m
}

func TestModeToggle(t *testing.T) {
	m, _, _ := newTestModel(&recordingSender{})

	if m.mode != ModeNormal {
		t.Fatal("model should start in normal mode")
	}

	m, _ = pressKey(t, m, ctrlT())
	if m.mode != ModeCompose {
		t.Error("Ctrl+T should enter compose mode")
	}
	if !strings.Contains(m.textarea.Placeholder, "Ctrl+S") {
		t.Errorf("placeholder should advertise the compose send key, got %q", m.textarea.Placeholder)
	}

	m, _ = pressKey(t, m, ctrlT())
	if m.mode != ModeNormal {
		t.Error("Ctrl+T should return to normal mode")
	}
}

func TestComposeMode_EnterDoesNotSend(t *testing.T) {
	sender := &recordingSender{}
	m, pipeline, _ := newTestModel(sender)

	m, _ = pressKey(t, m, ctrlT())
	m.textarea.SetValue("line one")
	m, _ = pressKey(t, m, enterKey())

	if m.loading {
		t.Error("Enter in compose mode must not submit")
	}
	if len(pipeline.Turns()) != 0 {
		t.Error("no turns should be appended")
	}
}

func TestComposeMode_CtrlSSends(t *testing.T) {
	sender := &recordingSender{reply: "feedback"}
	m, pipeline, _ := newTestModel(sender)

	m, _ = pressKey(t, m, ctrlT())
	m.textarea.SetValue("multi\nline\nanswer")
	m, cmd := pressKey(t, m, ctrlS())
	m = runSend(t, m, cmd)

	if len(pipeline.Turns()) != 2 {
		t.Fatalf("turns = %d, want 2", len(pipeline.Turns()))
	}
	if sender.lastText != "multi\nline\nanswer" {
		t.Errorf("sender received %q", sender.lastText)
	}
}

func TestCommand_AttachAndDetach(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m, _, stager := newTestModel(&recordingSender{})

	m.textarea.SetValue("/attach " + a + " " + b)
	m, _ = pressKey(t, m, enterKey())

	if stager.Len() != 2 {
		t.Fatalf("staged = %d, want 2", stager.Len())
	}

	m.textarea.SetValue("/detach 1")
	m, _ = pressKey(t, m, enterKey())

	if stager.Len() != 1 {
		t.Fatalf("staged = %d after detach, want 1", stager.Len())
	}
	if stager.Pending()[0].Name != "b.png" {
		t.Errorf("remaining attachment = %s", stager.Pending()[0].Name)
	}
}

func TestCommand_AttachMissingFile(t *testing.T) {
	m, _, stager := newTestModel(&recordingSender{})

	m.textarea.SetValue("/attach /no/such/file.txt")
	m, _ = pressKey(t, m, enterKey())

	if m.err == nil {
		t.Error("attaching a missing file should surface an error")
	}
	if stager.Len() != 0 {
		t.Error("failed attach must stage nothing")
	}
}

func TestCommand_Clear(t *testing.T) {
	sender := &recordingSender{reply: "r"}
	m, pipeline, _ := newTestModel(sender)

	m.textarea.SetValue("answer")
	m, cmd := pressKey(t, m, enterKey())
	m = runSend(t, m, cmd)

	m.textarea.SetValue("/clear")
	m, _ = pressKey(t, m, enterKey())

	if len(pipeline.Turns()) != 0 {
		t.Error("conversation should be empty after /clear")
	}
}

func TestCommand_Unknown(t *testing.T) {
	m, _, _ := newTestModel(&recordingSender{})

	m.textarea.SetValue("/frobnicate")
	m, _ = pressKey(t, m, enterKey())

	if !strings.Contains(m.notice, "/frobnicate") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestView_ShowsAttachmentStrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagram.png")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, _, stager := newTestModel(&recordingSender{})
	if err := stager.Stage([]string{path}); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(m.View(), "diagram.png") {
		t.Error("view should list staged attachments")
	}
}

func TestView_WelcomeWhenEmpty(t *testing.T) {
	m, _, _ := newTestModel(&recordingSender{})

	view := m.View()
	if !strings.Contains(view, "How would you improve Maps?") {
		t.Error("welcome screen should show the question under practice")
	}
}
