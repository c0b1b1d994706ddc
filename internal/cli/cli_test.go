package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/entropy/internal/item"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flag values live in package vars and survive between runs.
	storeDriver, storePath = "", ""
	runDryRun, runEvery = false, 0
	itemsAll, itemsJSON = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func explorerWith(t *testing.T, txs ...string) {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, `{"status":"1","message":"OK","result":[%s]}`, strings.Join(txs, ","))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Setenv("ENTROPY_EXPLORER_URL", srv.URL+"/api")
}

func txJSON(hash, wei, payload string) string {
	return fmt.Sprintf(`{"hash":%q,"value":%q,"input":"0x%s"}`, hash, wei, hex.EncodeToString([]byte(payload)))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "entropy dev") {
		t.Errorf("output = %q", out)
	}
}

func TestRunAndList(t *testing.T) {
	explorerWith(t,
		txJSON("0xr", "10000000000000000", ""),
		txJSON("0xb", "20000000000000000", "http://x/y.png"),
		txJSON("0xa", "20000000000000000", "hello"),
	)
	path := filepath.Join(t.TempDir(), "db.json")

	out, err := execute(t, "run", "--store-path", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "2 created") || !strings.Contains(out, "items: 2 total, 2 alive, saved") {
		t.Errorf("run output = %q", out)
	}

	out, err = execute(t, "items", "--json", "--store-path", path)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	var records []item.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode items: %v\n%s", err, out)
	}
	if len(records) != 2 || records[0].ID != "0xa" || records[1].Type != item.KindImage {
		t.Errorf("records = %+v", records)
	}

	out, err = execute(t, "items", "--store-path", path)
	if err != nil {
		t.Fatalf("items table: %v", err)
	}
	if !strings.Contains(out, "ENTROPY") || !strings.Contains(out, "hello") {
		t.Errorf("table = %q", out)
	}
}

func TestRunDryRun(t *testing.T) {
	explorerWith(t, txJSON("0xa", "20000000000000000", "hello"))
	path := filepath.Join(t.TempDir(), "entropy.db")

	out, err := execute(t, "run", "--dry-run", "--store-driver", "sqlite", "--store-path", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "not saved") {
		t.Errorf("run output = %q", out)
	}

	out, err = execute(t, "items", "--store-driver", "sqlite", "--store-path", path)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if !strings.Contains(out, "No items.") {
		t.Errorf("dry run persisted items: %q", out)
	}
}

func TestRunExplorerDown(t *testing.T) {
	t.Setenv("ENTROPY_EXPLORER_URL", "http://127.0.0.1:1/api")
	t.Setenv("ENTROPY_HTTP_TIMEOUT", "1s")
	path := filepath.Join(t.TempDir(), "db.json")

	out, err := execute(t, "run", "--store-path", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "fetch: failed") || !strings.Contains(out, "saved") {
		t.Errorf("run output = %q", out)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("ENTROPY_TOLERANCE", "0.5")
	if _, err := execute(t, "run", "--store-path", filepath.Join(t.TempDir(), "db.json")); err == nil {
		t.Fatal("expected config error")
	}
}

func TestShortID(t *testing.T) {
	long := "0x5be1c0ffee00000000000000000000000000000000000000000000000000abcd"
	if got := shortID(long); got != "0x5be1c0…abcd" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("0xa"); got != "0xa" {
		t.Errorf("shortID = %q", got)
	}
}
