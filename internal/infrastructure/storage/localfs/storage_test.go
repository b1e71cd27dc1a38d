package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveOpenRemoveRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	written, err := storage.Save(ctx, "doc-1_report.pdf", strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written != int64(len("hello world")) {
		t.Fatalf("expected %d bytes written, got %d", len("hello world"), written)
	}

	rc, err := storage.Open(ctx, "doc-1_report.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := storage.Remove(ctx, "doc-1_report.pdf"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := storage.Open(ctx, "doc-1_report.pdf"); err == nil {
		t.Fatal("expected open to fail after remove")
	}
}

func TestRemoveMissingKeyIsNoop(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := storage.Remove(context.Background(), "never-saved.bin"); err != nil {
		t.Fatalf("expected noop, got %v", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, key := range []string{"../outside.txt", "/etc/passwd", "a/../../b"} {
		if _, err := storage.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}
