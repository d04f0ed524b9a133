package forest

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evrenbey/grove/internal/domain"
	"github.com/evrenbey/grove/internal/event"
)

// VisualType selects a tree model. Derived from session mode and
// duration, never stored independently.
type VisualType string

const (
	Oak    VisualType = "oak"
	Pine   VisualType = "pine"
	Birch  VisualType = "birch"
	Willow VisualType = "willow"
)

// EvolutionStage is the seed/bush/tree lifecycle position.
type EvolutionStage string

const (
	StageSeed EvolutionStage = "seed"
	StageBush EvolutionStage = "bush"
	StageTree EvolutionStage = "tree"
)

// Tree is the derived forest entity, one per session. Everything here
// is computable from the session it mirrors plus the placement state at
// creation time.
type Tree struct {
	ID              string         `json:"id"`
	SessionID       string         `json:"sessionId"`
	Position        Vec3           `json:"position"`
	Duration        time.Duration  `json:"duration"`
	Mode            domain.Mode    `json:"mode"`
	Completed       bool           `json:"completed"`
	PlantedDate     string         `json:"plantedDate"`
	VisualType      VisualType     `json:"visualType"`
	Scale           float64        `json:"scale"`
	Health          float64        `json:"health"`
	Stage           EvolutionStage `json:"evolutionStage"`
	SessionProgress float64        `json:"sessionProgress,omitempty"`
}

const (
	scaleBaseline  = 25 * time.Minute
	pineThreshold  = 40 * time.Minute
	bushProgress   = 0.5
	incompleteDamp = 0.7
)

// visualTypeFor maps a session's mode and duration to a model.
func visualTypeFor(mode domain.Mode, duration time.Duration) VisualType {
	switch mode {
	case domain.ModeLongFocus:
		return Oak
	case domain.ModeShortFocus:
		return Birch
	default:
		if duration > pineThreshold {
			return Pine
		}
		return Willow
	}
}

// scaleFor normalizes duration against a 25 minute baseline, clamped to
// [0.5, 2.0], then dampened for sessions that did not finish.
func scaleFor(duration time.Duration, completed bool) float64 {
	scale := float64(duration) / float64(scaleBaseline)
	if scale < 0.5 {
		scale = 0.5
	}
	if scale > 2.0 {
		scale = 2.0
	}
	if !completed {
		scale *= incompleteDamp
	}
	return scale
}

// healthFor starts from completion, shifts by the quality tag, and
// clamps to [0.1, 1.0].
func healthFor(completed bool, quality domain.Quality) float64 {
	health := 0.4
	if completed {
		health = 1.0
	}
	switch quality {
	case domain.QualityHigh:
		health *= 1.2
	case domain.QualityLow:
		health *= 0.8
	}
	if health < 0.1 {
		health = 0.1
	}
	if health > 1.0 {
		health = 1.0
	}
	return health
}

func stageFor(completed bool, progress float64) EvolutionStage {
	if completed {
		return StageTree
	}
	if progress >= bushProgress {
		return StageBush
	}
	return StageSeed
}

// TransformEntryToTree derives a tree from a ledger entry. Pure except
// for the fresh tree id; position depends only on the session id and
// the trees already placed.
func TransformEntryToTree(e domain.Entry, existing []Tree) Tree {
	return Tree{
		ID:          uuid.NewString(),
		SessionID:   e.ID,
		Position:    placeTree(e.ID, existing),
		Duration:    e.Duration,
		Mode:        e.Mode,
		Completed:   e.Completed,
		PlantedDate: e.Date,
		VisualType:  visualTypeFor(e.Mode, e.Duration),
		Scale:       scaleFor(e.Duration, e.Completed),
		Health:      healthFor(e.Completed, e.Quality),
		Stage:       stageFor(e.Completed, 0),
	}
}

// EntrySource is the projection's read path into the ledger. The
// projection never mutates sessions; it only derives from them.
type EntrySource func() []domain.Entry

// Projection maintains the derived tree collection. All reconciliation
// is keyed by session id so repeated syncs and eager seeds never
// duplicate trees. Safe for concurrent use.
type Projection struct {
	mu      sync.Mutex
	trees   []Tree
	entries EntrySource
}

func NewProjection(entries EntrySource) *Projection {
	return &Projection{entries: entries}
}

// Trees returns a copy of the current collection.
func (f *Projection) Trees() []Tree {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Tree, len(f.trees))
	copy(out, f.trees)
	return out
}

func (f *Projection) treeIndexBySession(sessionID string) int {
	for i := range f.trees {
		if f.trees[i].SessionID == sessionID {
			return i
		}
	}
	return -1
}

// TreeBySession returns the tree derived from the given session.
func (f *Projection) TreeBySession(sessionID string) (Tree, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.treeIndexBySession(sessionID); i >= 0 {
		return f.trees[i], true
	}
	return Tree{}, false
}

// SyncWithSessions reconciles the collection against the ledger.
// Entries that already have a tree are refreshed in place, keeping
// their position; entries without one get a new tree. Calling this
// twice with no ledger change is a no-op.
func (f *Projection) SyncWithSessions() {
	if f.entries == nil {
		return
	}
	entries := f.entries()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncLocked(entries)
}

func (f *Projection) syncLocked(entries []domain.Entry) {
	for _, e := range entries {
		if i := f.treeIndexBySession(e.ID); i >= 0 {
			f.refresh(i, e)
			continue
		}
		f.trees = append(f.trees, TransformEntryToTree(e, f.trees))
	}
}

// refresh re-derives a tree's attributes from its entry without moving
// it. An eager seed tree graduates here once its session finalizes.
func (f *Projection) refresh(i int, e domain.Entry) {
	t := &f.trees[i]
	t.Duration = e.Duration
	t.Completed = e.Completed
	t.PlantedDate = e.Date
	t.VisualType = visualTypeFor(e.Mode, e.Duration)
	t.Scale = scaleFor(e.Duration, e.Completed)
	t.Health = healthFor(e.Completed, e.Quality)
	t.Stage = stageFor(e.Completed, t.SessionProgress)
}

// PlantSeed eagerly creates a seed-stage tree for a session that just
// started, so the scene reacts immediately instead of waiting for
// finalization. Planting twice for the same session is a no-op.
func (f *Projection) PlantSeed(sessionID string, mode domain.Mode, planned time.Duration, date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plantSeedLocked(sessionID, mode, planned, date)
}

func (f *Projection) plantSeedLocked(sessionID string, mode domain.Mode, planned time.Duration, date string) {
	if f.treeIndexBySession(sessionID) >= 0 {
		return
	}
	f.trees = append(f.trees, Tree{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Position:    placeTree(sessionID, f.trees),
		Duration:    planned,
		Mode:        mode,
		PlantedDate: date,
		VisualType:  visualTypeFor(mode, planned),
		Scale:       scaleFor(planned, false),
		Health:      healthFor(false, ""),
		Stage:       StageSeed,
	})
}

// UpdateLiveProgress moves a session's tree through its growth stages
// while the timer runs. Position is never touched, so the scene stays
// visually stable mid-session.
func (f *Projection) UpdateLiveProgress(sessionID string, progress float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateLiveProgressLocked(sessionID, progress)
}

func (f *Projection) updateLiveProgressLocked(sessionID string, progress float64) {
	i := f.treeIndexBySession(sessionID)
	if i < 0 {
		return
	}
	f.trees[i].SessionProgress = progress
	f.trees[i].Stage = stageFor(f.trees[i].Completed, progress)
}

// Clear removes every tree.
func (f *Projection) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trees = nil
}

// HandleEvents is the projection's subscription callback. It receives
// the whole log on every dispatch and acts on the newest entry only.
func (f *Projection) HandleEvents(log []event.Event) {
	if len(log) == 0 {
		return
	}
	latest := log[len(log)-1]
	switch p := latest.Payload.(type) {
	case event.TimerStartedPayload:
		f.PlantSeed(p.SessionID, p.Mode, time.Duration(p.Duration)*time.Minute, domain.DateOf(latest.At))
	case event.TimerTickPayload:
		f.UpdateLiveProgress(p.SessionID, p.Progress)
	case event.SessionAddedPayload, event.SessionUpdatedPayload, event.DataImportedPayload:
		f.SyncWithSessions()
	case event.SessionRemovedPayload:
		f.mu.Lock()
		if i := f.treeIndexBySession(p.SessionID); i >= 0 {
			f.trees = append(f.trees[:i], f.trees[i+1:]...)
		}
		f.mu.Unlock()
	case event.DataClearedPayload:
		f.Clear()
	}
}
