package filechange

import (
	"errors"
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
)

type fakeReader map[string][]byte

func (f fakeReader) ReadFile(path string) ([]byte, error) {
	content, ok := f[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return content, nil
}

func TestDetect_NoChangeWhenHashMatches(t *testing.T) {
	hash := Hash([]byte("hello"))
	metrics := convo.Metrics{FileOperations: map[string]convo.FileOperation{
		"/a": {ToolKind: "write", ContentHash: &hash},
	}}
	reader := fakeReader{"/a": []byte("hello")}

	changes := Detect(reader, metrics)
	if len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}
}

func TestDetect_ChangeWhenHashDiffers(t *testing.T) {
	oldHash := Hash([]byte("hello"))
	metrics := convo.Metrics{FileOperations: map[string]convo.FileOperation{
		"/a": {ToolKind: "write", ContentHash: &oldHash},
	}}
	reader := fakeReader{"/a": []byte("goodbye")}

	changes := Detect(reader, metrics)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %v", changes)
	}
	if changes[0].Path != "/a" || changes[0].ContentHash == nil {
		t.Fatalf("unexpected change: %+v", changes[0])
	}
	if *changes[0].ContentHash != Hash([]byte("goodbye")) {
		t.Fatalf("hash mismatch")
	}
}

func TestDetect_UnreadableFileReportsNilHash(t *testing.T) {
	oldHash := Hash([]byte("hello"))
	metrics := convo.Metrics{FileOperations: map[string]convo.FileOperation{
		"/missing": {ToolKind: "write", ContentHash: &oldHash},
	}}
	reader := fakeReader{}

	changes := Detect(reader, metrics)
	if len(changes) != 1 || changes[0].ContentHash != nil {
		t.Fatalf("expected 1 change with nil hash, got %+v", changes)
	}
}

func TestDetect_SortedByPath(t *testing.T) {
	metrics := convo.Metrics{FileOperations: map[string]convo.FileOperation{
		"/z": {ToolKind: "write"},
		"/a": {ToolKind: "write"},
		"/m": {ToolKind: "write"},
	}}
	reader := fakeReader{"/z": []byte("1"), "/a": []byte("2"), "/m": []byte("3")}

	changes := Detect(reader, metrics)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(changes))
	}
	if changes[0].Path != "/a" || changes[1].Path != "/m" || changes[2].Path != "/z" {
		t.Fatalf("not sorted: %+v", changes)
	}
}

func TestDetect_RepeatedCallsWithoutUpdateKeepReporting(t *testing.T) {
	metrics := convo.Metrics{FileOperations: map[string]convo.FileOperation{
		"/a": {ToolKind: "write"},
	}}
	reader := fakeReader{"/a": []byte("hello")}

	first := Detect(reader, metrics)
	second := Detect(reader, metrics)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected repeated detection without caller updating metrics")
	}
}
