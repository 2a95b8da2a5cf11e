package classify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func defaultTargets(t *testing.T) Targets {
	t.Helper()
	targets, err := CompileTargets(nil)
	if err != nil {
		t.Fatalf("CompileTargets: %v", err)
	}
	return targets
}

func TestClassifyNonAdminTargetMention(t *testing.T) {
	post := PostRecord{Comments: []Comment{
		{Commenter: "Jane", Text: "Saw a Naja philippinensis near the creek"},
	}}
	decision := Classify(post, Roster{}, defaultTargets(t))
	if decision.Outcome != OutcomeSavedNoAdmin {
		t.Fatalf("outcome = %q, want %q", decision.Outcome, OutcomeSavedNoAdmin)
	}
	if decision.Representative == nil || decision.Representative.Commenter != "Jane" {
		t.Fatalf("representative = %+v, want Jane's comment", decision.Representative)
	}
}

func TestClassifyRosterPromotesToAccepted(t *testing.T) {
	post := PostRecord{Comments: []Comment{
		{Commenter: "Jane", Text: "Saw a Naja philippinensis near the creek"},
	}}
	roster := Roster{"jane": {}}
	decision := Classify(post, roster, defaultTargets(t))
	if decision.Outcome != OutcomeAccepted {
		t.Fatalf("outcome = %q, want %q", decision.Outcome, OutcomeAccepted)
	}
	if !decision.AdminFound || !decision.TargetFound {
		t.Fatalf("expected admin and target found, got %+v", decision)
	}
}

func TestClassifyAdminPriorityIgnoresNonAdminMentions(t *testing.T) {
	post := PostRecord{Comments: []Comment{
		{Commenter: "Member", Text: "definitely a king cobra"},
		{Commenter: "Mod", Text: "#admin noted, not relevant"},
	}}
	decision := Classify(post, Roster{}, defaultTargets(t))
	if decision.Outcome != OutcomeRejectedWithAdmin {
		t.Fatalf("outcome = %q, want %q", decision.Outcome, OutcomeRejectedWithAdmin)
	}
	if decision.Representative == nil || decision.Representative.Commenter != "Mod" {
		t.Fatalf("representative = %+v, want the admin comment", decision.Representative)
	}
}

func TestClassifyEmptyCommentList(t *testing.T) {
	decision := Classify(PostRecord{}, Roster{}, defaultTargets(t))
	if decision.Outcome != OutcomeRejectedNoAdmin {
		t.Fatalf("outcome = %q, want %q", decision.Outcome, OutcomeRejectedNoAdmin)
	}
	if decision.Representative != nil {
		t.Fatalf("expected no representative, got %+v", decision.Representative)
	}
}

func TestClassifyAcceptedPrefersMarkerComment(t *testing.T) {
	roster := Roster{"ana": {}, "ben": {}}
	post := PostRecord{Comments: []Comment{
		{Commenter: "Ana", Text: "Samar cobra, confirming"},
		{Commenter: "Ben", Text: "#admin Naja samarensis confirmed"},
	}}
	decision := Classify(post, roster, defaultTargets(t))
	if decision.Outcome != OutcomeAccepted {
		t.Fatalf("outcome = %q", decision.Outcome)
	}
	if decision.Representative.Commenter != "Ben" {
		t.Fatalf("representative = %q, want marker comment first", decision.Representative.Commenter)
	}
	if len(decision.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(decision.Matches))
	}
}

func TestClassifySavedKeepsAllMatchesInOrder(t *testing.T) {
	post := PostRecord{Comments: []Comment{
		{Commenter: "A", Text: "nothing to see"},
		{Commenter: "B", Text: "that is a philippine cobra"},
		{Commenter: "C", Text: "agree, ph cobra"},
	}}
	decision := Classify(post, Roster{}, defaultTargets(t))
	if decision.Outcome != OutcomeSavedNoAdmin {
		t.Fatalf("outcome = %q", decision.Outcome)
	}
	if len(decision.Matches) != 2 || decision.Matches[0].Commenter != "B" || decision.Matches[1].Commenter != "C" {
		t.Fatalf("matches out of order: %+v", decision.Matches)
	}
}

func TestClassifyStylizedTextStillMatches(t *testing.T) {
	// "king cobra" written in sans-serif italic unicode letters.
	stylized := "\U0001D62C\U0001D62A\U0001D62F\U0001D628 \U0001D624\U0001D630\U0001D623\U0001D633\U0001D622"
	post := PostRecord{Comments: []Comment{{Commenter: "X", Text: stylized}}}
	decision := Classify(post, Roster{}, defaultTargets(t))
	if decision.Outcome != OutcomeSavedNoAdmin {
		t.Fatalf("stylized mention not matched: %q", decision.Outcome)
	}
}

func TestClassifyGenusOnlyMention(t *testing.T) {
	post := PostRecord{Comments: []Comment{{Commenter: "X", Text: "Looks like (Naja sp.) to me"}}}
	decision := Classify(post, Roster{}, defaultTargets(t))
	if decision.Outcome != OutcomeSavedNoAdmin {
		t.Fatalf("genus-only mention not matched: %q", decision.Outcome)
	}
}

func TestIsAdminLikeSignals(t *testing.T) {
	roster := Roster{"grace admin": {}}
	cases := []struct {
		name    string
		comment Comment
		want    bool
	}{
		{"roster", Comment{Commenter: "Grace  Admin"}, true},
		{"structured is_admin", Comment{Commenter: "X", IsAdmin: true}, true},
		{"structured group_staff", Comment{Commenter: "X", GroupStaff: true}, true},
		{"role", Comment{Commenter: "X", Role: " Group Moderator "}, true},
		{"badge string", Comment{Commenter: "X", Badges: []Badge{{Label: "Admin"}}}, true},
		{"badge moderator", Comment{Commenter: "X", Badges: []Badge{{Label: "Top moderator"}}}, true},
		{"commenter info", Comment{Commenter: "X", CommenterInfo: CommenterInfo{IsModerator: true}}, true},
		{"inline marker", Comment{Commenter: "X", Text: "ok #ADMIN noted"}, true},
		{"plain member", Comment{Commenter: "X", Text: "nice photo"}, false},
		{"unknown role", Comment{Commenter: "X", Role: "member"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAdminLike(tc.comment, roster); got != tc.want {
				t.Fatalf("IsAdminLike = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBadgeUnmarshalShapes(t *testing.T) {
	var c Comment
	payload := `{"commenter":"X","text":"hi","badges":["Admin",{"label":"Moderator"},{"name":"Group admin"},42]}`
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(c.Badges) != 4 {
		t.Fatalf("badges = %d, want 4", len(c.Badges))
	}
	if c.Badges[0].Label != "Admin" || c.Badges[1].Label != "Moderator" || c.Badges[2].Label != "Group admin" {
		t.Fatalf("unexpected badge labels: %+v", c.Badges)
	}
	if c.Badges[3].Label != "" {
		t.Fatalf("unreadable badge should carry no label: %+v", c.Badges[3])
	}
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "group_staff.txt")
	content := "Jane Dela Cruz\n\n  MARIO Reyes  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	roster, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster size = %d, want 2", len(roster))
	}
	if !roster.Contains("jane dela cruz") || !roster.Contains("Mario  Reyes") {
		t.Fatalf("expected membership, got %v", roster)
	}
	if roster.Contains("someone else") {
		t.Fatal("unexpected membership")
	}
}

func TestLoadRosterMissingFile(t *testing.T) {
	roster, err := LoadRoster(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatalf("missing roster should not error: %v", err)
	}
	if len(roster) != 0 {
		t.Fatalf("expected empty roster, got %v", roster)
	}
}

func TestCompileTargetsRejectsBadPattern(t *testing.T) {
	if _, err := CompileTargets([]string{"("}); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestCollectible(t *testing.T) {
	if (Comment{}).Collectible() {
		t.Fatal("empty comment should not be collectible")
	}
	if !(Comment{Commenter: "X"}).Collectible() || !(Comment{Text: "hi"}).Collectible() {
		t.Fatal("comment with commenter or text should be collectible")
	}
}
