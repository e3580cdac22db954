package chat

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

// writeTestFile creates a file with the given name and content in dir
func writeTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestStage_EncodesAllFiles(t *testing.T) {
	dir := t.TempDir()
	png := writeTestFile(t, dir, "diagram.png", []byte("png-bytes"))
	txt := writeTestFile(t, dir, "notes.txt", []byte("my answer notes"))

	registry := NewPreviewRegistry()
	st := NewStager(registry)

	if err := st.Stage([]string{png, txt}); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	pending := st.Pending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending attachments, got %d", len(pending))
	}

	if pending[0].Name != "diagram.png" {
		t.Errorf("order not preserved: first = %s", pending[0].Name)
	}

	wantPayload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	if pending[0].Payload != wantPayload {
		t.Error("payload is not the base64 encoding of the file")
	}

	if pending[0].MIMEType != "image/png" {
		t.Errorf("MIMEType = %s, want image/png", pending[0].MIMEType)
	}
}

func TestStage_PreviewOnlyForImages(t *testing.T) {
	dir := t.TempDir()
	png := writeTestFile(t, dir, "shot.png", []byte("x"))
	txt := writeTestFile(t, dir, "plain.txt", []byte("y"))

	registry := NewPreviewRegistry()
	st := NewStager(registry)

	if err := st.Stage([]string{png, txt}); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	pending := st.Pending()
	if pending[0].PreviewRef == "" {
		t.Error("image attachment should have a preview reference")
	}
	if pending[1].PreviewRef != "" {
		t.Error("non-image attachment should not have a preview reference")
	}

	if registry.Len() != 1 {
		t.Errorf("registry holds %d refs, want 1", registry.Len())
	}
}

func TestStage_OneFailureRejectsBatch(t *testing.T) {
	dir := t.TempDir()
	good := writeTestFile(t, dir, "ok.txt", []byte("fine"))
	missing := filepath.Join(dir, "does-not-exist.txt")

	registry := NewPreviewRegistry()
	st := NewStager(registry)

	if err := st.Stage([]string{good, missing}); err == nil {
		t.Fatal("expected error when one file in the batch cannot be read")
	}

	if st.Len() != 0 {
		t.Errorf("failed batch should leave pending list untouched, got %d", st.Len())
	}
	if registry.Len() != 0 {
		t.Errorf("failed batch should create no previews, got %d", registry.Len())
	}
}

func TestStage_EmptySelection(t *testing.T) {
	st := NewStager(NewPreviewRegistry())
	if err := st.Stage(nil); err != nil {
		t.Errorf("staging nothing should succeed: %v", err)
	}
	if st.Len() != 0 {
		t.Error("pending list should stay empty")
	}
}

func TestRemove_RevokesAndPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.png", []byte("a"))
	b := writeTestFile(t, dir, "b.png", []byte("b"))
	c := writeTestFile(t, dir, "c.png", []byte("c"))

	registry := NewPreviewRegistry()
	st := NewStager(registry)
	if err := st.Stage([]string{a, b, c}); err != nil {
		t.Fatal(err)
	}

	removedRef := st.Pending()[1].PreviewRef
	st.Remove(1)

	pending := st.Pending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 after Remove, got %d", len(pending))
	}
	if pending[0].Name != "a.png" || pending[1].Name != "c.png" {
		t.Errorf("relative order broken: %s, %s", pending[0].Name, pending[1].Name)
	}

	if _, live := registry.Resolve(removedRef); live {
		t.Error("preview reference should be revoked on Remove")
	}
	if registry.Len() != 2 {
		t.Errorf("registry holds %d refs, want 2", registry.Len())
	}
}

func TestRemove_OutOfRange(t *testing.T) {
	st := NewStager(NewPreviewRegistry())
	st.Remove(0)  // empty
	st.Remove(-1) // negative
}

func TestClear_RevokesEverything(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.jpg", []byte("a"))
	b := writeTestFile(t, dir, "b.gif", []byte("b"))

	registry := NewPreviewRegistry()
	st := NewStager(registry)
	if err := st.Stage([]string{a, b}); err != nil {
		t.Fatal(err)
	}

	st.Clear()

	if st.Len() != 0 {
		t.Error("pending list should be empty after Clear")
	}
	if registry.Len() != 0 {
		t.Errorf("all preview refs should be revoked, %d remain", registry.Len())
	}
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"photo.png", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"notes.unknownext", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := DetectMIME(tt.path); got != tt.want {
			t.Errorf("DetectMIME(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestIsImageMIME(t *testing.T) {
	if !IsImageMIME("image/webp") {
		t.Error("image/webp should be an image")
	}
	if IsImageMIME("application/pdf") {
		t.Error("application/pdf should not be an image")
	}
}

func TestProjectAttachments(t *testing.T) {
	pending := []PendingAttachment{
		{Name: "a.png", MIMEType: "image/png", PreviewRef: "preview://1", Payload: "xx"},
		{Name: "b.txt", MIMEType: "text/plain; charset=utf-8", Payload: "yy"},
	}

	metas := ProjectAttachments(pending)
	if len(metas) != 2 {
		t.Fatalf("expected 2 metas, got %d", len(metas))
	}
	if metas[0].FileName != "a.png" || metas[0].PreviewRef != "preview://1" {
		t.Errorf("unexpected projection: %+v", metas[0])
	}

	if got := ProjectAttachments(nil); got != nil {
		t.Error("empty projection should be nil")
	}
}
