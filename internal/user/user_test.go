package user

import (
	"strings"
	"testing"
	"time"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
)

func newTestStore() (*Store, *[]event.Payload) {
	var emitted []event.Payload
	s := NewStore(func(p event.Payload) {
		emitted = append(emitted, p)
	})
	s.now = func() time.Time {
		return time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)
	}
	return s, &emitted
}

func TestSanitizePseudo(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  alice  ", "alice"},
		{`<b>alice</b>`, "baliceb"},
		{`a"b\c&d`, "abcd"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := SanitizePseudo(c.in); got != c.want {
			t.Errorf("SanitizePseudo(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidatePseudoBounds(t *testing.T) {
	if _, err := ValidatePseudo("   "); err == nil {
		t.Error("whitespace-only pseudo accepted")
	}
	if _, err := ValidatePseudo(`<>"`); err == nil {
		t.Error("pseudo empty after sanitization accepted")
	}
	if _, err := ValidatePseudo(strings.Repeat("a", 21)); err == nil {
		t.Error("21 character pseudo accepted")
	}
	got, err := ValidatePseudo(strings.Repeat("a", 20))
	if err != nil || len(got) != 20 {
		t.Errorf("20 character pseudo rejected: %v", err)
	}
	if got, err := ValidatePseudo(" x "); err != nil || got != "x" {
		t.Errorf("single character pseudo rejected: %v", err)
	}
}

func TestFirstSubmissionCreatesProfile(t *testing.T) {
	s, emitted := newTestStore()

	if err := s.SubmitPseudo("  alice  "); err != nil {
		t.Fatal(err)
	}
	p, ok := s.Profile()
	if !ok || p.Pseudo != "alice" {
		t.Fatalf("profile = %+v, ok = %v", p, ok)
	}
	if p.CreatedAt != p.LastActiveAt {
		t.Error("creation should set both timestamps")
	}
	if _, ok := (*emitted)[0].(event.UserProfileCreatedPayload); !ok {
		t.Errorf("first submission emitted %#v", (*emitted)[0])
	}

	// Resubmission updates, never recreates.
	if err := s.SubmitPseudo("bob"); err != nil {
		t.Fatal(err)
	}
	p, _ = s.Profile()
	if p.Pseudo != "bob" {
		t.Errorf("pseudo after resubmission = %s", p.Pseudo)
	}
	if _, ok := (*emitted)[1].(event.UserProfileUpdatedPayload); !ok {
		t.Errorf("resubmission emitted %#v", (*emitted)[1])
	}
}

func TestInvalidPseudoLeavesStateUntouched(t *testing.T) {
	s, emitted := newTestStore()
	if err := s.SubmitPseudo(""); err == nil {
		t.Fatal("empty pseudo accepted")
	}
	if s.LoggedIn() {
		t.Error("rejected submission created a profile")
	}
	if len(*emitted) != 0 {
		t.Error("rejected submission emitted events")
	}
}

func TestSessionCompletionCounter(t *testing.T) {
	s, emitted := newTestStore()

	s.RecordSessionCompleted() // no profile, silent no-op
	if len(*emitted) != 0 {
		t.Fatal("no-op emitted an event")
	}

	if err := s.SubmitPseudo("alice"); err != nil {
		t.Fatal(err)
	}
	s.RecordSessionCompleted()
	s.RecordSessionCompleted()

	p, _ := s.Profile()
	if p.TotalSessions != 2 {
		t.Errorf("total sessions = %d, want 2", p.TotalSessions)
	}
	last := (*emitted)[len(*emitted)-1]
	done, ok := last.(event.UserSessionCompletedPayload)
	if !ok || done.SessionCount != 2 {
		t.Errorf("unexpected payload %#v", last)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	s, emitted := newTestStore()
	if err := s.SubmitPseudo("alice"); err != nil {
		t.Fatal(err)
	}
	s.SetPreference("theme", "dark")

	s.Logout()
	if s.LoggedIn() {
		t.Fatal("profile survived logout")
	}
	last := (*emitted)[len(*emitted)-1]
	if _, ok := last.(event.UserLoggedOutPayload); !ok {
		t.Errorf("logout emitted %#v", last)
	}

	s.Logout() // second logout is a no-op
}

func TestHandleEventsReactsToLatest(t *testing.T) {
	s, _ := newTestStore()
	if err := s.SubmitPseudo("alice"); err != nil {
		t.Fatal(err)
	}

	log := []event.Event{
		event.New(event.TimerCompletedPayload{SessionID: "s1", Mode: domain.ModeShortFocus, Duration: 1500}),
	}
	s.HandleEvents(log)
	p, _ := s.Profile()
	if p.TotalSessions != 1 {
		t.Errorf("total sessions = %d, want 1", p.TotalSessions)
	}

	// Older completion events in the log are not reprocessed.
	log = append(log, event.New(event.AudioPausePayload{}))
	s.HandleEvents(log)
	p, _ = s.Profile()
	if p.TotalSessions != 1 {
		t.Errorf("total sessions after unrelated event = %d, want 1", p.TotalSessions)
	}
}
