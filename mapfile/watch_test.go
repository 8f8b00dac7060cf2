package mapfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soaklib/soak/metadata"
)

// watchResult is one delivery from the watch callback.
type watchResult struct {
	defs []*metadata.Def
	err  error
}

func startWatch(t *testing.T, dir string) (<-chan watchResult, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan watchResult, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func(defs []*metadata.Def, err error) {
			results <- watchResult{defs: defs, err: err}
		})
	}()
	// Give the watcher time to register before the test writes anything.
	time.Sleep(250 * time.Millisecond)
	return results, cancel, done
}

func TestWatch_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "author.soak"), "entity author { id bigint @key; }\n")

	results, cancel, done := startWatch(t, dir)
	defer cancel()

	writeFile(t, filepath.Join(dir, "book.soak"), "entity book { id bigint @key; }\n")

	select {
	case res := <-results:
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if len(res.defs) != 2 {
			t.Fatalf("expected 2 definitions after reload, got %d", len(res.defs))
		}
		if res.defs[0].Name != "author" || res.defs[1].Name != "book" {
			t.Fatalf("unexpected definitions: %s, %s", res.defs[0].Name, res.defs[1].Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestWatch_GroupsRapidWrites(t *testing.T) {
	dir := t.TempDir()

	results, cancel, done := startWatch(t, dir)
	defer cancel()

	for _, name := range []string{"a.soak", "b.soak", "c.soak"} {
		entity := name[:1]
		writeFile(t, filepath.Join(dir, name), "entity "+entity+" { id bigint @key; }\n")
	}

	// Rapid writes land in one debounce window, so some delivery sees the
	// complete set. Later deliveries would too, so drain until one does.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case res := <-results:
			if res.err != nil {
				t.Fatalf("unexpected error: %v", res.err)
			}
			if len(res.defs) == 3 {
				cancel()
				<-done
				return
			}
		case <-deadline:
			t.Fatal("never observed the complete set")
		}
	}
}

func TestWatch_DeliversLoadError(t *testing.T) {
	dir := t.TempDir()

	results, cancel, done := startWatch(t, dir)
	defer cancel()

	writeFile(t, filepath.Join(dir, "broken.soak"), "entity {")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case res := <-results:
			if res.err != nil {
				cancel()
				<-done
				return
			}
		case <-deadline:
			t.Fatal("load error never delivered")
		}
	}
}

func TestWatch_PicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()

	results, cancel, done := startWatch(t, dir)
	defer cancel()

	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Let the watcher pick up the new directory before writing into it.
	time.Sleep(250 * time.Millisecond)
	writeFile(t, filepath.Join(sub, "tag.soak"), "entity tag { id bigint @key; }\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case res := <-results:
			if res.err != nil {
				t.Fatalf("unexpected error: %v", res.err)
			}
			if len(res.defs) == 1 && res.defs[0].Name == "tag" {
				cancel()
				<-done
				return
			}
		case <-deadline:
			t.Fatal("change under new directory never delivered")
		}
	}
}

func TestWatch_ReturnsOnCancel(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func([]*metadata.Def, error) {})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return")
	}
}
