package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
)

func layout() graph.Layout {
	return graph.Layout{
		Width: 330, Height: 360, Ticks: 300,
		Positions: []graph.Position{{ID: "a", X: 1, Y: 2}, {ID: "b", X: 3, Y: 4}},
	}
}

// exercise runs the common contract against any backend.
func exercise(t *testing.T, st Store) {
	ctx := context.Background()

	old := New("old", "doc1", layout())
	old.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := New("recent", "doc1", layout())
	recent.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	other := New("other", "doc2", layout())

	for _, s := range []*Snapshot{old, recent, other} {
		if err := st.Save(ctx, s); err != nil {
			t.Fatalf("Save(%s): %v", s.Name, err)
		}
	}

	got, err := st.Get(ctx, recent.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "recent" || got.DocumentHash != "doc1" || len(got.Layout.Positions) != 2 {
		t.Errorf("Get = %+v", got)
	}
	if p := got.Layout.Positions[1]; p.ID != "b" || p.X != 3 || p.Y != 4 {
		t.Errorf("position lost: %+v", p)
	}

	list, err := st.List(ctx, "doc1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "recent" || list[1].Name != "old" {
		t.Errorf("List(doc1) = %v", names(list))
	}
	all, _ := st.List(ctx, "")
	if len(all) != 3 {
		t.Errorf("List() = %v", names(all))
	}

	recent.Name = "renamed"
	if err := st.Save(ctx, recent); err != nil {
		t.Fatal(err)
	}
	got, _ = st.Get(ctx, recent.ID)
	if got.Name != "renamed" {
		t.Errorf("Save should replace, got %q", got.Name)
	}

	if err := st.Delete(ctx, old.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, old.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get after delete error = %v, want NOT_FOUND", err)
	}
	if err := st.Delete(ctx, old.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}

	if _, err := st.Get(ctx, "../../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad id error = %v, want INVALID_INPUT", err)
	}
}

func names(snaps []*Snapshot) []string {
	var out []string
	for _, s := range snaps {
		out = append(out, s.Name)
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	st := NewMemoryStore()
	s := New("x", "", layout())
	st.Save(context.Background(), s)
	s.Layout.Positions[0].X = 99

	got, _ := st.Get(context.Background(), s.ID)
	if got.Layout.Positions[0].X != 1 {
		t.Error("stored snapshot shares memory with the caller")
	}
}

func TestFileStore(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, st)
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	st, _ := NewFileStore(dir)
	os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644)
	os.WriteFile(filepath.Join(dir, "3f1c3a8e-5b8e-4a52-9a0a-6f0c7d2f1e11.json"), []byte("{broken"), 0o644)

	if err := st.Save(context.Background(), New("ok", "", layout())); err != nil {
		t.Fatal(err)
	}
	list, err := st.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "ok" {
		t.Errorf("List = %v", names(list))
	}
}

func TestSaveAssignsID(t *testing.T) {
	st := NewMemoryStore()
	s := &Snapshot{Layout: layout()}
	if err := st.Save(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseID(s.ID); err != nil {
		t.Errorf("assigned id %q is not a uuid", s.ID)
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if err := st.Save(context.Background(), nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil snapshot error = %v", err)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"3F1C3A8E-5B8E-4A52-9A0A-6F0C7D2F1E11", "3f1c3a8e-5b8e-4a52-9a0a-6f0c7d2f1e11", false},
		{" 3f1c3a8e-5b8e-4a52-9a0a-6f0c7d2f1e11 ", "3f1c3a8e-5b8e-4a52-9a0a-6f0c7d2f1e11", false},
		{"latest", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseID(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("REVEAL_TEST_MONGO")
	if uri == "" {
		t.Skip("set REVEAL_TEST_MONGO to run against MongoDB")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := NewMongoStore(ctx, MongoOptions{URI: uri, Database: "reveal_test", Collection: "snapshots_" + time.Now().Format("150405")})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		st.coll.Drop(context.Background())
		st.Close()
	}()
	exercise(t, st)
}

func TestMongoStoreRequiresURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoOptions{})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}
