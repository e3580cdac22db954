package api

import (
	"github.com/tidwall/gjson"

	"github.com/productsiksha/pmsiksha/internal/chat"
	apierrors "github.com/productsiksha/pmsiksha/internal/errors"
	"github.com/productsiksha/pmsiksha/internal/models"
)

// feedbackFile is the wire shape of one attached file
type feedbackFile struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Base64 string `json:"base64"`
}

// feedbackPayload is the request body for the feedback endpoint
type feedbackPayload struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Prompt   string         `json:"prompt"`
	Files    []feedbackFile `json:"files"`
}

// Feedback submits an interview answer for AI review and returns the
// feedback text. Attachments ride along as base64 payloads.
func (c *Client) Feedback(question, answer, prompt string, attachments []chat.PendingAttachment) (string, error) {
	payload := feedbackPayload{
		Question: question,
		Answer:   answer,
		Prompt:   prompt,
		Files:    make([]feedbackFile, 0, len(attachments)),
	}
	for _, att := range attachments {
		payload.Files = append(payload.Files, feedbackFile{
			Name:   att.Name,
			Type:   att.MIMEType,
			Base64: att.Payload,
		})
	}

	body, err := c.post("/api/feedback", payload, false)
	if err != nil {
		return "", err
	}

	feedback := gjson.GetBytes(body, "feedback").String()
	if feedback == "" {
		return "", apierrors.NewParseError("response carries no feedback", "/api/feedback")
	}
	return feedback, nil
}

// FeedbackSession binds a question and review prompt to the feedback
// endpoint so a conversation pipeline can drive it as its sender.
type FeedbackSession struct {
	client   *Client
	question models.Question
	prompt   string
}

var _ chat.Sender = (*FeedbackSession)(nil)

// NewFeedbackSession creates a session for practicing one question
func NewFeedbackSession(client *Client, question models.Question, prompt string) *FeedbackSession {
	return &FeedbackSession{
		client:   client,
		question: question,
		prompt:   prompt,
	}
}

// Question returns the question under practice
func (s *FeedbackSession) Question() models.Question {
	return s.question
}

// SendMessage sends the user's answer text and attachments for review
func (s *FeedbackSession) SendMessage(text string, attachments []chat.PendingAttachment) (string, error) {
	return s.client.Feedback(s.question.Question, text, s.prompt, attachments)
}
