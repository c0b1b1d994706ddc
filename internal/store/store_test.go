package store

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/entropy/internal/config"
	"github.com/lazypower/entropy/internal/item"
)

var t0 = time.Unix(1700000000, 0).UTC()

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func sampleCollection() *item.Collection {
	dead := item.New("0xdead", "gone soon", t0)
	for !dead.Age(24) {
	}
	aging := item.New("0xb", "http://x/y.png", t0)
	aging.Age(24)
	return item.NewCollection(item.New("0xa", "hello", t0), aging, dead)
}

func assertSample(t *testing.T, c *item.Collection) {
	t.Helper()
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	items := c.Items()
	if items[0].ID != "0xa" || items[1].ID != "0xb" || items[2].ID != "0xdead" {
		t.Errorf("order = %s,%s,%s", items[0].ID, items[1].ID, items[2].ID)
	}
	if items[0].Content() != "hello" || items[0].Kind != item.KindText || items[0].Entropy() != 0 {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Kind != item.KindImage || items[1].Entropy() != 1 {
		t.Errorf("item 1 = %+v", items[1])
	}
	if items[2].IsAlive() || items[2].Content() != item.LostContent || items[2].Entropy() != 24 {
		t.Errorf("item 2 = %+v", items[2])
	}
	if !items[0].LastRefreshedAt.Equal(t0) {
		t.Errorf("LastRefreshedAt = %v, want %v", items[0].LastRefreshedAt, t0)
	}
}

func TestJSONFileMissingIsEmpty(t *testing.T) {
	f := NewJSONFile(filepath.Join(t.TempDir(), "db.json"), quietLogger())
	c, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "db.json")
	f := NewJSONFile(path, quietLogger())

	if err := f.Save(context.Background(), sampleCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSample(t, c)

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"last_healed_ts"`) || !strings.Contains(string(raw), "\n  {") {
		t.Errorf("unexpected file layout:\n%s", raw)
	}
}

func TestJSONFileEmptySavesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	f := NewJSONFile(path, quietLogger())
	if err := f.Save(context.Background(), item.NewCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("empty collection saved as %q", raw)
	}
}

func TestJSONFileCorruptionResets(t *testing.T) {
	cases := map[string]string{
		"blank":          "  \n\t",
		"garbage":        "{not json",
		"wrong shape":    `{"id":"0xa"}`,
		"bad status":     `[{"id":"0xa","content":"x","type":"text","entropy":0,"last_healed_ts":0,"status":"undead"}]`,
		"duplicate ids":  `[{"id":"0xa","content":"x","type":"text","entropy":0,"last_healed_ts":0,"status":"alive"},{"id":"0xa","content":"y","type":"text","entropy":0,"last_healed_ts":0,"status":"alive"}]`,
		"negative value": `[{"id":"0xa","content":"x","type":"text","entropy":-2,"last_healed_ts":0,"status":"alive"}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "db.json")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			c, err := NewJSONFile(path, quietLogger()).Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if c.Len() != 0 {
				t.Errorf("Len = %d, want 0", c.Len())
			}
		})
	}
}

func TestJSONFileReadsLegacyDB(t *testing.T) {
	legacy := `[
  {
    "id": "0x5be1",
    "content": "gm fuji",
    "type": "text",
    "entropy": 3,
    "last_healed_ts": 1733000000,
    "status": "alive"
  }
]`
	path := filepath.Join(t.TempDir(), "db.json")
	os.WriteFile(path, []byte(legacy), 0o644)

	c, err := NewJSONFile(path, quietLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	it, ok := c.Get("0x5be1")
	if !ok || it.Entropy() != 3 || it.Content() != "gm fuji" || it.LastRefreshedAt.Unix() != 1733000000 {
		t.Errorf("item = %+v", it)
	}
}

func TestJSONFileSaveFailureKeepsPriorState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	f := NewJSONFile(path, quietLogger())
	if err := f.Save(context.Background(), sampleCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.Save(ctx, item.NewCollection()); err == nil {
		t.Fatal("expected error from cancelled save")
	}

	c, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSample(t, c)
}

func TestOpenMemory(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	if db.Path != ":memory:" {
		t.Errorf("Path = %q, want :memory:", db.Path)
	}
	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("SchemaVersion = %d, want 1", v)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	empty, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("Len = %d, want 0", empty.Len())
	}

	if err := db.Save(context.Background(), sampleCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSample(t, c)

	// Save replaces, it does not append.
	c.Add(item.New("0xc", "more", t0))
	if err := db.Save(context.Background(), c); err != nil {
		t.Fatalf("Save 2: %v", err)
	}
	again, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("Load 2: %v", err)
	}
	if again.Len() != 4 || again.Items()[3].ID != "0xc" {
		t.Errorf("Len = %d after resave", again.Len())
	}
}

func TestSQLiteSaveIsAtomic(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	if err := db.Save(context.Background(), sampleCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A record the CHECK constraint rejects aborts the whole save.
	bad := item.NewCollection(item.New("0xz", "fine", t0), &item.Item{ID: "0xy", Kind: "video", State: item.Alive{}})
	if err := db.Save(context.Background(), bad); err == nil {
		t.Fatal("expected constraint error")
	}

	c, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSample(t, c)
}

func TestSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "entropy.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Save(context.Background(), sampleCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	c, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSample(t, c)
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	js, err := New(config.StoreConfig{Driver: "json", Path: filepath.Join(dir, "db.json")}, quietLogger())
	if err != nil {
		t.Fatalf("New json: %v", err)
	}
	if _, ok := js.(*JSONFile); !ok {
		t.Errorf("json driver returned %T", js)
	}
	js.Close()

	sq, err := New(config.StoreConfig{Driver: "sqlite", Path: filepath.Join(dir, "entropy.db")}, quietLogger())
	if err != nil {
		t.Fatalf("New sqlite: %v", err)
	}
	if _, ok := sq.(*DB); !ok {
		t.Errorf("sqlite driver returned %T", sq)
	}
	sq.Close()

	if _, err := New(config.StoreConfig{Driver: "etcd"}, quietLogger()); err == nil {
		t.Error("expected error for unknown driver")
	}
}
