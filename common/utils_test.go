package common

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestIsChild(t *testing.T) {
	tests := []struct {
		path   string
		parent string
		want   bool
	}{
		{"/a/b", "/a", true},
		{"/a/b/c", "/a", true},
		{"/a", "/a", false},
		{"/ab", "/a", false},
		{"/a/", "/a", false},
		{"/a", "/", true},
		{"/", "/", false},
		{"/a/b", "/a/", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"_in_"+tt.parent, func(t *testing.T) {
			if got := IsChild(tt.path, tt.parent); got != tt.want {
				t.Errorf("IsChild(%q, %q) = %v, want %v", tt.path, tt.parent, got, tt.want)
			}
		})
	}
}

func TestIsEqualOrChild(t *testing.T) {
	if !IsEqualOrChild("/a", "/a") {
		t.Error("IsEqualOrChild should accept equal paths")
	}
	if !IsEqualOrChild("/a/c/d", "/a") {
		t.Error("IsEqualOrChild should accept nested paths")
	}
	if IsEqualOrChild("/b", "/a") {
		t.Error("IsEqualOrChild should reject siblings")
	}
}

func TestStringSetAndSortedKeys(t *testing.T) {
	set := StringSet([]string{"/B", "/a", "/b"})

	if len(set) != 2 {
		t.Errorf("StringSet length = %v, want 2", len(set))
	}

	keys := SortedKeys(set)
	if strings.Join(keys, ",") != "/a,/b" {
		t.Errorf("SortedKeys() = %v, want [/a /b]", keys)
	}
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.HasSuffix(dir, ConfigDirName) {
		t.Errorf("GetConfigDir() = %v, should end with %v", dir, ConfigDirName)
	}
}

func TestFileExists(t *testing.T) {
	tempFile, err := os.CreateTemp(t.TempDir(), "test")
	if err != nil {
		t.Fatal(err)
	}
	tempFile.Close()

	if !FileExists(tempFile.Name()) {
		t.Error("FileExists() should return true for existing file")
	}

	if FileExists("/nonexistent/path/to/file") {
		t.Error("FileExists() should return false for non-existing file")
	}
}

func TestWrapError(t *testing.T) {
	wrapped := WrapError(ErrBusy, "could not update excluded items")

	if !strings.Contains(wrapped.Error(), "could not update excluded items") {
		t.Error("WrapError should include additional context")
	}
	if !errors.Is(wrapped, ErrBusy) {
		t.Error("WrapError should keep the original error reachable via errors.Is")
	}
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}
}

func TestSyncState_String(t *testing.T) {
	tests := []struct {
		state    SyncState
		expected string
	}{
		{StateIdle, "Up to date"},
		{StateSyncing, "Syncing..."},
		{StatePaused, "Syncing paused"},
		{StateError, "Sync error"},
		{StateDisconnected, "Connecting..."},
		{SyncState(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("SyncState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
