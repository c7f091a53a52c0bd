package answer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/54b3r/docsbot-go/internal/context7"
	"github.com/54b3r/docsbot-go/internal/logging"
)

// fakeFetcher is a test double for the Fetcher interface. It serves canned
// snippets or errors per library ID, with an optional per-library delay to
// scramble completion order.
type fakeFetcher struct {
	// snippets maps library ID to its canned response.
	snippets map[string][]context7.Snippet
	// errs maps library ID to a canned failure.
	errs map[string]error
	// delays maps library ID to an artificial response delay.
	delays map[string]time.Duration
}

func (f *fakeFetcher) GetContext(_ context.Context, libraryID, _ string) ([]context7.Snippet, error) {
	if d, ok := f.delays[libraryID]; ok {
		time.Sleep(d)
	}
	if err, ok := f.errs[libraryID]; ok {
		return nil, err
	}
	return f.snippets[libraryID], nil
}

// testService builds a Service over the fake.
func testService(f *fakeFetcher) *Service {
	return New(f)
}

// testCtx returns a context carrying a discarded logger, so branch
// diagnostics stay out of test output.
func testCtx() context.Context {
	return logging.WithLogger(context.Background(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestAsk_JoinsInRequestedOrder verifies that results follow the order
// libraries were requested in, not completion order: the first library is
// slowed down and must still come first.
func TestAsk_JoinsInRequestedOrder(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{
		snippets: map[string][]context7.Snippet{
			"/lib/slow": {{Title: "s1", Content: "slow one"}, {Title: "s2", Content: "slow two"}},
			"/lib/fast": {{Title: "f1", Content: "fast one"}},
		},
		delays: map[string]time.Duration{"/lib/slow": 30 * time.Millisecond},
	}

	got := testService(f).Ask(testCtx(), []string{"/lib/slow", "/lib/fast"}, "q")

	want := []string{"s1", "s2", "f1"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(got), len(want), got)
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Title, title)
		}
	}
}

// TestAsk_TagsLibrary verifies every snippet carries the library it came from.
func TestAsk_TagsLibrary(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{
		snippets: map[string][]context7.Snippet{
			"/lib/a": {{Content: "aa"}},
			"/lib/b": {{Content: "bb"}},
		},
	}

	got := testService(f).Ask(testCtx(), []string{"/lib/a", "/lib/b"}, "q")

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Library != "/lib/a" || got[1].Library != "/lib/b" {
		t.Errorf("libraries = [%q, %q], want [/lib/a, /lib/b]", got[0].Library, got[1].Library)
	}
}

// TestAsk_PartialFailure verifies a failing branch contributes zero
// snippets without aborting its siblings.
func TestAsk_PartialFailure(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{
		snippets: map[string][]context7.Snippet{
			"/lib/ok": {{Title: "kept", Content: "still here"}},
		},
		errs: map[string]error{
			"/lib/down":    errors.New("boom"),
			"/lib/limited": context7.ErrRateLimited,
		},
	}

	got := testService(f).Ask(testCtx(), []string{"/lib/down", "/lib/ok", "/lib/limited"}, "q")

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(got), got)
	}
	if got[0].Title != "kept" {
		t.Errorf("Title = %q, want kept", got[0].Title)
	}
}

// TestAsk_AllFailed verifies that every branch failing yields an empty (not
// nil-panicking) result — the caller treats it as "no documentation found".
func TestAsk_AllFailed(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{
		errs: map[string]error{
			"/lib/a": errors.New("boom"),
			"/lib/b": errors.New("boom"),
		},
	}

	got := testService(f).Ask(testCtx(), []string{"/lib/a", "/lib/b"}, "q")
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

// TestAsk_UsesContextLogger verifies branch diagnostics go to the logger
// carried on the context, so they inherit the caller's request attributes.
func TestAsk_UsesContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil)).With(slog.String("user", "user-42"))
	ctx := logging.WithLogger(context.Background(), log)

	f := &fakeFetcher{errs: map[string]error{"/lib/broken": errors.New("boom")}}
	testService(f).Ask(ctx, []string{"/lib/broken"}, "q")

	out := buf.String()
	if !strings.Contains(out, "/lib/broken") {
		t.Errorf("branch failure not logged via context logger: %q", out)
	}
	if !strings.Contains(out, "user-42") {
		t.Errorf("context logger attributes missing from output: %q", out)
	}
}

// TestAsk_NoLibraries verifies an empty library set is a no-op.
func TestAsk_NoLibraries(t *testing.T) {
	t.Parallel()

	got := testService(&fakeFetcher{}).Ask(testCtx(), nil, "q")
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
