package enrichment

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func init() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time.
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			// Remove the directory from the source's filename.
			if a.Key == slog.SourceKey {
				source := a.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return a
		},
	}))
	slog.SetDefault(logger)
}

func TestComm(t *testing.T) {
	c, err := NewCommCache(filepath.Join("testdata", "proc"), time.Hour)
	if err != nil {
		t.Fatalf("couldn't create the cache: %v", err)
	}

	tests := map[uint32]string{
		1234: "myapp",
		4321: "ib_send_bw",
	}

	for pid, want := range tests {
		got, err := c.Comm(pid)
		if err != nil {
			t.Errorf("%d: unexpected error: %v", pid, err)
			continue
		}
		if got != want {
			t.Errorf("%d: got %q; want %q", pid, got, want)
		}
	}

	if _, err := c.Comm(99999); err == nil {
		t.Errorf("found a name for a missing process")
	}

	if c.Len() != 2 {
		t.Errorf("got %d cached names; want 2", c.Len())
	}
}

func TestCommPrune(t *testing.T) {
	c, err := NewCommCache(filepath.Join("testdata", "proc"), time.Hour)
	if err != nil {
		t.Fatalf("couldn't create the cache: %v", err)
	}

	if _, err := c.Comm(1234); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Age the entry past its ttl.
	c.cache[1234] = commEntry{name: "stale", ts: time.Now().Add(-2 * time.Hour)}
	if n := c.Prune(); n != 1 {
		t.Errorf("pruned %d names; want 1", n)
	}

	if got, _ := c.Comm(1234); got != "myapp" {
		t.Errorf("got %q; want %q", got, "myapp")
	}
}

func TestCommNoCaching(t *testing.T) {
	c, err := NewCommCache(filepath.Join("testdata", "proc"), 0)
	if err != nil {
		t.Fatalf("couldn't create the cache: %v", err)
	}

	if _, err := c.Comm(1234); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("got %d cached names; want 0", c.Len())
	}
}
