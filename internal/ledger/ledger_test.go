package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindIdentityColumn(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		want    int
		ok      bool
	}{
		{"exact post url", []string{"date", "post url", "text"}, 1, true},
		{"exact url", []string{"url"}, 0, true},
		{"underscore", []string{"post_url"}, 0, true},
		{"link", []string{"link", "note"}, 0, true},
		{"case and spacing", []string{" Post   URL "}, 0, true},
		{"bom prefix", []string{"\ufeffurl", "x"}, 0, true},
		{"contains fallback", []string{"source", "origin url value"}, 1, true},
		{"prefers exact over contains", []string{"original url", "url"}, 1, true},
		{"no candidate", []string{"date", "poster"}, 0, false},
		{"empty", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FindIdentityColumn(tc.headers)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("FindIdentityColumn(%v) = (%d, %v), want (%d, %v)", tc.headers, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestLedgerContainsMissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "absent.csv"), []string{"url"})
	present, err := l.Contains("https://www.facebook.com/posts/1")
	if err != nil || present {
		t.Fatalf("Contains on missing file = (%v, %v), want (false, nil)", present, err)
	}
}

func TestLedgerContainsMatchesURLVariants(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "out.csv"), []string{"post url", "commenter"})
	if err := l.Append([]string{"https://www.facebook.com/groups/9/posts/1", "Mod"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	variants := []string{
		"https://www.facebook.com/groups/9/posts/1",
		"https://m.facebook.com/groups/9/posts/1/",
		"https://facebook.com/groups/9/posts/1?comment_id=4#top",
	}
	for _, v := range variants {
		present, err := l.Contains(v)
		if err != nil {
			t.Fatalf("Contains(%q): %v", v, err)
		}
		if !present {
			t.Fatalf("Contains(%q) = false, want true", v)
		}
	}
	present, err := l.Contains("https://www.facebook.com/groups/9/posts/2")
	if err != nil || present {
		t.Fatalf("unexpected membership for different post: (%v, %v)", present, err)
	}
}

func TestLedgerContainsBOMHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	content := "\ufeffpost url,commenter\nhttps://www.facebook.com/posts/7,Mod\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := New(path, []string{"post url", "commenter"})
	present, err := l.Contains("https://m.facebook.com/posts/7")
	if err != nil || !present {
		t.Fatalf("Contains with BOM header = (%v, %v), want (true, nil)", present, err)
	}
}

func TestLedgerContainsNoIdentityColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.csv")
	if err := os.WriteFile(path, []byte("a,b\nx,y\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := New(path, []string{"a", "b"})
	present, err := l.Contains("https://www.facebook.com/posts/1")
	if err != nil || present {
		t.Fatalf("no identity column should mean no match: (%v, %v)", present, err)
	}
}

func TestLedgerAppendCreatesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	l := New(path, []string{"post url", "commenter", "comment text"})
	if err := l.Append([]string{"https://www.facebook.com/posts/1", "A", "t1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append([]string{"https://www.facebook.com/posts/2", "B", "t2"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3: %q", len(lines), lines)
	}
	if lines[0] != "post url,commenter,comment text" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "https://www.facebook.com/posts/1") || !strings.HasPrefix(lines[2], "https://www.facebook.com/posts/2") {
		t.Fatalf("rows reordered or missing: %q", lines)
	}
}

func TestLedgerAppendUnique(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "out.csv"), []string{"post url"})
	url := "https://www.facebook.com/posts/5"
	written, err := l.AppendUnique(url, []string{url})
	if err != nil || !written {
		t.Fatalf("first AppendUnique = (%v, %v)", written, err)
	}
	written, err = l.AppendUnique("https://m.facebook.com/posts/5/", []string{url})
	if err != nil {
		t.Fatalf("second AppendUnique: %v", err)
	}
	if written {
		t.Fatal("duplicate write slipped through")
	}
}

func TestLedgerIdentitiesAndCount(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "out.csv"), []string{"post url", "commenter"})

	urls, err := l.Identities()
	if err != nil || urls != nil {
		t.Fatalf("Identities on missing file = (%v, %v)", urls, err)
	}
	count, err := l.Count()
	if err != nil || count != 0 {
		t.Fatalf("Count on missing file = (%d, %v)", count, err)
	}

	if err := l.Append(
		[]string{"https://m.facebook.com/posts/1/", "A"},
		[]string{"-", "B"},
		[]string{"https://www.facebook.com/posts/2", "C"},
	); err != nil {
		t.Fatalf("Append: %v", err)
	}

	urls, err = l.Identities()
	if err != nil {
		t.Fatalf("Identities: %v", err)
	}
	// Placeholder rows have no canonical URL and drop out.
	if len(urls) != 2 || urls[0] != "https://www.facebook.com/posts/1" || urls[1] != "https://www.facebook.com/posts/2" {
		t.Fatalf("Identities = %v", urls)
	}
	count, err = l.Count()
	if err != nil || count != 3 {
		t.Fatalf("Count = (%d, %v), want 3 data rows", count, err)
	}
}

func TestSetAlreadyProcessed(t *testing.T) {
	dir := t.TempDir()
	set := NewSet(dir, dir, dir)
	url := "https://www.facebook.com/groups/9/posts/42"
	if _, err := set.Rejected.AppendUnique(url, []string{url, Placeholder, Placeholder}); err != nil {
		t.Fatalf("append rejected: %v", err)
	}
	done, hits, err := set.AlreadyProcessed("https://m.facebook.com/groups/9/posts/42?x=1")
	if err != nil {
		t.Fatalf("AlreadyProcessed: %v", err)
	}
	if !done || len(hits) != 1 || hits[0] != RejectedFile {
		t.Fatalf("AlreadyProcessed = (%v, %v)", done, hits)
	}
	done, _, err = set.AlreadyProcessed("https://www.facebook.com/groups/9/posts/43")
	if err != nil || done {
		t.Fatalf("fresh URL reported processed: (%v, %v)", done, err)
	}
}

func TestSetRecordOutcome(t *testing.T) {
	dir := t.TempDir()
	set := NewSet(dir, dir, dir)
	if err := set.RecordOutcome("https://m.facebook.com/posts/3/", 17, "Saved - no admin"); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	data, err := os.ReadFile(set.RunLog.Path())
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	want := "url,comment scraped,status\nhttps://www.facebook.com/posts/3,17,Saved - no admin\n"
	if string(data) != want {
		t.Fatalf("run log = %q, want %q", string(data), want)
	}
}

func TestSetMarkDoneIdempotent(t *testing.T) {
	dir := t.TempDir()
	set := NewSet(dir, dir, dir)
	for range 3 {
		if err := set.MarkDone("https://m.facebook.com/posts/8?x=2"); err != nil {
			t.Fatalf("MarkDone: %v", err)
		}
	}
	data, err := os.ReadFile(set.Done.Path())
	if err != nil {
		t.Fatalf("read done: %v", err)
	}
	if got := strings.Count(string(data), "posts/8"); got != 1 {
		t.Fatalf("done rows = %d, want 1: %q", got, string(data))
	}
}

func TestPendingAppendLoadRemove(t *testing.T) {
	p := NewPending(filepath.Join(t.TempDir(), PendingFile))
	urls := []string{
		"https://www.facebook.com/groups/9/posts/1",
		"https://www.facebook.com/groups/9/posts/2",
		"https://www.facebook.com/groups/9/posts/3",
	}
	for _, u := range urls {
		if err := p.Append(u); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	snapshot, err := p.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := snapshot.URLs(); len(got) != 3 || got[0] != urls[0] {
		t.Fatalf("URLs = %v", got)
	}

	removed, err := p.Remove("https://m.facebook.com/groups/9/posts/2/")
	if err != nil || !removed {
		t.Fatalf("Remove = (%v, %v)", removed, err)
	}
	snapshot, err = p.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := snapshot.URLs()
	if len(got) != 2 || got[0] != urls[0] || got[1] != urls[2] {
		t.Fatalf("after removal URLs = %v", got)
	}

	removed, err = p.Remove("https://www.facebook.com/groups/9/posts/99")
	if err != nil || removed {
		t.Fatalf("Remove of absent URL = (%v, %v)", removed, err)
	}
}

func TestPendingLoadHeaderless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.csv")
	content := "https://www.facebook.com/posts/1\nhttps://www.facebook.com/posts/2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := NewPending(path)
	snapshot, err := p.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := snapshot.URLs(); len(got) != 2 {
		t.Fatalf("URLs = %v, want both data rows", got)
	}

	if _, err := p.Remove("https://www.facebook.com/posts/1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "post_url") {
		t.Fatalf("headerless file grew a header: %q", string(data))
	}
	if strings.Contains(string(data), "posts/1") || !strings.Contains(string(data), "posts/2") {
		t.Fatalf("unexpected rewrite result: %q", string(data))
	}
}

func TestPendingRemovePreservesExtraColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.csv")
	content := "post url,note\nhttps://www.facebook.com/posts/1,keep me\nhttps://www.facebook.com/posts/2,other\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := NewPending(path)
	if _, err := p.Remove("https://www.facebook.com/posts/2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "post url,note\nhttps://www.facebook.com/posts/1,keep me\n"
	if string(data) != want {
		t.Fatalf("rewrite = %q, want %q", string(data), want)
	}
}

func TestPendingLoadMissingFile(t *testing.T) {
	p := NewPending(filepath.Join(t.TempDir(), "absent.csv"))
	snapshot, err := p.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snapshot.Len() != 0 {
		t.Fatalf("expected empty snapshot, got %d rows", snapshot.Len())
	}
}
