package storage

import (
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/grove.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopening must not re-run migrations.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestSaveLoadDelete(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.Load("settings"); err != nil || ok {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}

	if err := s.Save("settings", `{"volume":70}`); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Load("settings")
	if err != nil || !ok || v != `{"volume":70}` {
		t.Fatalf("load after save: %q ok=%v err=%v", v, ok, err)
	}

	// Upsert overwrites.
	if err := s.Save("settings", `{"volume":30}`); err != nil {
		t.Fatal(err)
	}
	v, _, _ = s.Load("settings")
	if v != `{"volume":30}` {
		t.Fatalf("expected overwrite, got %q", v)
	}

	if err := s.Delete("settings"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Load("settings"); ok {
		t.Fatal("key still present after delete")
	}

	// Deleting an absent key is a no-op.
	if err := s.Delete("settings"); err != nil {
		t.Fatal(err)
	}
}

func TestKeys(t *testing.T) {
	s := newTestStore(t)
	s.Save("b", "2")
	s.Save("a", "1")

	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := newTestStore(t)

	type blob struct {
		Volume int    `json:"volume"`
		Name   string `json:"name"`
	}
	in := blob{Volume: 70, Name: "focus"}
	if err := s.SaveJSON("audio", in); err != nil {
		t.Fatal(err)
	}

	var out blob
	ok, err := s.LoadJSON("audio", &out)
	if err != nil || !ok {
		t.Fatalf("load json: ok=%v err=%v", ok, err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}

	var missing blob
	ok, err = s.LoadJSON("nope", &missing)
	if err != nil || ok {
		t.Fatalf("absent json key: ok=%v err=%v", ok, err)
	}
}

func TestWriteRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("constraint failed")
	err := writeRetry.run(func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("expected one attempt for permanent error, got %d (%v)", calls, err)
	}
}

func TestWriteRetryRetriesLockErrors(t *testing.T) {
	policy := retryPolicy{attempts: 3, base: 1, cap: 2}
	calls := 0
	err := policy.run(func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third attempt, calls=%d err=%v", calls, err)
	}
}

func TestIsLockErr(t *testing.T) {
	if isLockErr(nil) {
		t.Fatal("nil is not a lock error")
	}
	if !isLockErr(errors.New("SQLITE_BUSY: locked")) {
		t.Fatal("SQLITE_BUSY should retry")
	}
	if isLockErr(errors.New("UNIQUE constraint failed")) {
		t.Fatal("constraint errors are permanent")
	}
	if isLockErr(errors.New("disk I/O error (522)")) {
		t.Fatal("I/O errors are permanent")
	}
}
