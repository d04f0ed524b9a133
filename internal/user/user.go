// Package user owns the local identity: a display pseudo, activity
// timestamps and the lifetime session counter. Identity is optional;
// every operation on a missing profile is a silent no-op.
package user

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/evrenbey/grove/internal/event"
)

// Profile is the locally stored identity.
type Profile struct {
	Pseudo        string            `json:"pseudo"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastActiveAt  time.Time         `json:"lastActiveAt"`
	TotalSessions int               `json:"totalSessions"`
	Preferences   map[string]string `json:"preferences,omitempty"`
}

const (
	minPseudoLen = 1
	maxPseudoLen = 20
)

// markupSpecials are stripped from pseudos before validation so a
// display name can never carry markup into any rendering surface.
const markupSpecials = `<>"/\&`

// SanitizePseudo trims whitespace and removes markup-special
// characters.
func SanitizePseudo(raw string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(markupSpecials, r) {
			return -1
		}
		return r
	}, raw)
	return strings.TrimSpace(clean)
}

// ValidatePseudo sanitizes raw and checks the length bounds, returning
// the cleaned pseudo.
func ValidatePseudo(raw string) (string, error) {
	clean := SanitizePseudo(raw)
	n := len([]rune(clean))
	if n < minPseudoLen || n > maxPseudoLen {
		return "", fmt.Errorf("pseudo must be %d to %d characters after trimming, got %d", minPseudoLen, maxPseudoLen, n)
	}
	return clean, nil
}

// Emitter is the outbound announcement path for identity changes.
type Emitter func(p event.Payload)

// Store manages the profile lifecycle. Safe for concurrent use;
// announcements fire after the lock is released.
type Store struct {
	mu      sync.Mutex
	profile *Profile
	now     func() time.Time
	emit    Emitter
}

func NewStore(emit Emitter) *Store {
	return &Store{now: time.Now, emit: emit}
}

func (s *Store) announce(p event.Payload) {
	if s.emit != nil {
		s.emit(p)
	}
}

// Profile returns a copy of the current profile, preferences included.
func (s *Store) Profile() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return Profile{}, false
	}
	p := *s.profile
	if s.profile.Preferences != nil {
		p.Preferences = make(map[string]string, len(s.profile.Preferences))
		for k, v := range s.profile.Preferences {
			p.Preferences[k] = v
		}
	}
	return p, true
}

// LoggedIn reports whether a profile exists.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile != nil
}

// SubmitPseudo validates raw and either creates the profile (first
// submission) or refreshes activity on the existing one. The profile's
// pseudo is also updated so a rename is a plain resubmission.
func (s *Store) SubmitPseudo(raw string) error {
	pseudo, err := ValidatePseudo(raw)
	if err != nil {
		return fmt.Errorf("submit pseudo: %w", err)
	}

	s.mu.Lock()
	now := s.now()
	created := s.profile == nil
	if created {
		s.profile = &Profile{
			Pseudo:       pseudo,
			CreatedAt:    now,
			LastActiveAt: now,
			Preferences:  make(map[string]string),
		}
	} else {
		s.profile.Pseudo = pseudo
		s.profile.LastActiveAt = now
	}
	s.mu.Unlock()

	if created {
		s.announce(event.UserProfileCreatedPayload{Pseudo: pseudo})
	} else {
		s.announce(event.UserProfileUpdatedPayload{Pseudo: pseudo})
	}
	return nil
}

// SetPreference stores a key/value preference on the profile. No-op
// without a profile.
func (s *Store) SetPreference(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return
	}
	if s.profile.Preferences == nil {
		s.profile.Preferences = make(map[string]string)
	}
	s.profile.Preferences[key] = value
	s.profile.LastActiveAt = s.now()
}

// RecordSessionCompleted bumps the lifetime counter and activity
// timestamp. No-op without a profile.
func (s *Store) RecordSessionCompleted() {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return
	}
	s.profile.TotalSessions++
	s.profile.LastActiveAt = s.now()
	p := event.UserSessionCompletedPayload{
		Pseudo:       s.profile.Pseudo,
		SessionCount: s.profile.TotalSessions,
	}
	s.mu.Unlock()
	s.announce(p)
}

// Touch refreshes LastActiveAt, for callers reacting to settings or
// other activity. No-op without a profile.
func (s *Store) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return
	}
	s.profile.LastActiveAt = s.now()
}

// Logout clears the profile entirely.
func (s *Store) Logout() {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return
	}
	s.profile = nil
	s.mu.Unlock()
	s.announce(event.UserLoggedOutPayload{})
}

// Restore installs a previously persisted profile, bypassing
// validation. Used only by the persistence load path.
func (s *Store) Restore(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
}

// HandleEvents reacts to the newest log entry: session completions bump
// the counter, settings changes refresh activity.
func (s *Store) HandleEvents(log []event.Event) {
	if len(log) == 0 {
		return
	}
	switch log[len(log)-1].Payload.(type) {
	case event.TimerCompletedPayload:
		s.RecordSessionCompleted()
	case event.SettingsUpdatedPayload, event.ThemeChangedPayload:
		s.Touch()
	}
}
