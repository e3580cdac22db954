package chat

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxAttachmentSize caps individual attached files at 20MB, matching the
// feedback service's upload limit
const MaxAttachmentSize = 20 * 1024 * 1024

// PreviewProvider hands out transient preview references for image
// attachments and releases them when an attachment is removed.
type PreviewProvider interface {
	Create(path string) (string, error)
	Revoke(ref string)
}

// PreviewRegistry is the default PreviewProvider: an in-memory table of
// reference strings to file paths. References are process-local and become
// invalid once revoked.
type PreviewRegistry struct {
	mu   sync.Mutex
	refs map[string]string
}

// NewPreviewRegistry creates an empty registry
func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{refs: make(map[string]string)}
}

// Create registers a preview for path and returns its reference
func (r *PreviewRegistry) Create(path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := "preview://" + uuid.NewString()
	r.refs[ref] = path
	return ref, nil
}

// Resolve returns the path behind a reference, or false if revoked
func (r *PreviewRegistry) Resolve(ref string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path, ok := r.refs[ref]
	return path, ok
}

// Revoke releases a reference. Revoking an unknown reference is a no-op.
func (r *PreviewRegistry) Revoke(ref string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refs, ref)
}

// Len returns the number of live references
func (r *PreviewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refs)
}

// IsImageMIME reports whether a media type gets a preview
func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// DetectMIME guesses a file's media type from its extension
func DetectMIME(path string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}

// Stager holds the working set of attachments between selection and send
type Stager struct {
	previews PreviewProvider
	pending  []PendingAttachment
}

// NewStager creates a stager using the given preview provider
func NewStager(previews PreviewProvider) *Stager {
	return &Stager{previews: previews}
}

// Stage encodes the selected files and appends them to the pending list.
// Encodings run concurrently and are joined before anything is appended;
// a single failure rejects the whole batch and leaves the pending list
// untouched.
func (st *Stager) Stage(paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	staged := make([]PendingAttachment, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			att, err := encodeFile(path)
			if err != nil {
				return err
			}
			staged[i] = att
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Previews are created after the join so a failed batch leaks nothing
	for i := range staged {
		if !IsImageMIME(staged[i].MIMEType) {
			continue
		}
		ref, err := st.previews.Create(staged[i].Path)
		if err != nil {
			continue
		}
		staged[i].PreviewRef = ref
	}

	st.pending = append(st.pending, staged...)
	return nil
}

// encodeFile reads a file and produces its base64 payload
func encodeFile(path string) (PendingAttachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return PendingAttachment{}, fmt.Errorf("failed to stat attachment: %w", err)
	}
	if info.Size() > MaxAttachmentSize {
		return PendingAttachment{}, fmt.Errorf("attachment %s exceeds maximum %d bytes", filepath.Base(path), MaxAttachmentSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return PendingAttachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}

	return PendingAttachment{
		Name:     filepath.Base(path),
		Path:     path,
		MIMEType: DetectMIME(path),
		Payload:  base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Remove drops the pending attachment at index i, releasing its preview
// reference. Out-of-range indexes are ignored.
func (st *Stager) Remove(i int) {
	if i < 0 || i >= len(st.pending) {
		return
	}

	if ref := st.pending[i].PreviewRef; ref != "" {
		st.previews.Revoke(ref)
	}

	st.pending = append(st.pending[:i], st.pending[i+1:]...)
}

// Pending returns a copy of the current working set
func (st *Stager) Pending() []PendingAttachment {
	if len(st.pending) == 0 {
		return nil
	}
	out := make([]PendingAttachment, len(st.pending))
	copy(out, st.pending)
	return out
}

// Len returns the number of staged attachments
func (st *Stager) Len() int {
	return len(st.pending)
}

// Clear drops all staged attachments, releasing every preview reference.
// Called after a send and on conversation switch.
func (st *Stager) Clear() {
	for _, p := range st.pending {
		if p.PreviewRef != "" {
			st.previews.Revoke(p.PreviewRef)
		}
	}
	st.pending = nil
}
