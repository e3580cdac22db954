// Package chat implements local practice-conversation state: the persisted
// turn history per question, attachment staging, and the send pipeline that
// talks to the feedback service.
package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AttachmentMeta is the display-only projection of a staged attachment that
// gets persisted with a turn. The file payload itself is never stored.
type AttachmentMeta struct {
	FileName   string `json:"file_name"`
	MIMEType   string `json:"mime_type"`
	PreviewRef string `json:"preview_ref,omitempty"`
}

// Turn represents a single message in a practice conversation.
// Turns are immutable once created; a conversation is an append-only
// sequence of turns ordered by insertion.
type Turn struct {
	ID          string           `json:"id"`
	Role        string           `json:"role"`
	Content     string           `json:"content"`
	Attachments []AttachmentMeta `json:"attachments,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewTurn creates a turn with a fresh ID and the current time.
// Timestamps are for display only; insertion order is authoritative.
func NewTurn(role, content string, attachments []AttachmentMeta) Turn {
	return Turn{
		ID:          uuid.NewString(),
		Role:        role,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}
}

// PendingAttachment is a file staged for sending but not yet part of any
// turn. It exists only in memory between selection and send.
type PendingAttachment struct {
	Name       string
	Path       string
	MIMEType   string
	PreviewRef string
	Payload    string // base64-encoded file contents
}

// Meta projects the attachment into its persistable form
func (p PendingAttachment) Meta() AttachmentMeta {
	return AttachmentMeta{
		FileName:   p.Name,
		MIMEType:   p.MIMEType,
		PreviewRef: p.PreviewRef,
	}
}

// ProjectAttachments converts staged attachments into turn metadata,
// preserving order. Returns nil for an empty input.
func ProjectAttachments(pending []PendingAttachment) []AttachmentMeta {
	if len(pending) == 0 {
		return nil
	}
	metas := make([]AttachmentMeta, len(pending))
	for i, p := range pending {
		metas[i] = p.Meta()
	}
	return metas
}

// ContextKey derives the storage key for a question's conversation
func ContextKey(questionID int) string {
	return fmt.Sprintf("question-%d", questionID)
}
