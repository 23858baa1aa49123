package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/luoyiti/web-video-player/internal/formatter"
	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/services"
	"github.com/luoyiti/web-video-player/internal/shared"
	"github.com/luoyiti/web-video-player/internal/snapshot"
	tu "github.com/luoyiti/web-video-player/internal/testing"
)

// setupRunner returns a runner over an in-memory snapshot store with demo defaults.
func setupRunner(t *testing.T, backend *tu.FakeBackend) (*Runner, *bytes.Buffer, *snapshot.MemoryStore) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Client.SeedDemo = true
	config.Client.Offline = backend == nil

	output := &bytes.Buffer{}
	store := snapshot.NewMemoryStore()
	opts := RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		Store:  store,
	}
	if backend != nil {
		opts.Gateway = backend
	}
	return NewRunner(opts), output, store
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return newApp(r).Run(context.Background(), append([]string{"wvp"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			store := snapshot.NewMemoryStore()
			backend := tu.NewFakeBackend(1)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Store:      store,
				Gateway:    backend,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
			if runner.backend() != backend {
				t.Error("expected gateway to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("backend", func(t *testing.T) {
		t.Run("offline config has no gateway", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Client.Offline = true
			runner := NewRunner(RunnerOpts{Config: config})

			if runner.backend() != nil {
				t.Error("expected no gateway when offline")
			}
		})

		t.Run("builds gateway from config", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Client.BackendURL = "http://example.test:9000/"
			runner := NewRunner(RunnerOpts{Config: config})

			g, ok := runner.backend().(*services.Gateway)
			if !ok {
				t.Fatalf("expected *services.Gateway, got %T", runner.backend())
			}
			if g.BaseURL() != "http://example.test:9000" {
				t.Errorf("unexpected base URL %s", g.BaseURL())
			}
		})
	})

	t.Run("snapshotStore", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Client.SnapshotPath = filepath.Join(t.TempDir(), "state.json")
		runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

		store, err := runner.snapshotStore()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		fs, ok := store.(*snapshot.FileStore)
		if !ok {
			t.Fatalf("expected *snapshot.FileStore, got %T", store)
		}
		if fs.Path() != config.Client.SnapshotPath || fs.Key() != snapshot.DefaultKey {
			t.Errorf("unexpected file store %s / %s", fs.Path(), fs.Key())
		}
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("loads explicit config", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			data := "[client]\nstorage_key = \"customKey\"\noffline = true\n[log]\nlevel = \"warn\"\n"
			if err := os.WriteFile(path, []byte(data), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner, _, _ := setupRunner(t, nil)
			if err := run(t, runner, "--config", path, "catalog", "tags"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config.Client.StorageKey != "customKey" {
				t.Errorf("expected storage key from file, got %s", runner.config.Client.StorageKey)
			}
			if runner.config.Server.Port != 5001 {
				t.Errorf("expected default port to survive, got %d", runner.config.Server.Port)
			}
			if runner.logger.GetLevel() != log.WarnLevel {
				t.Errorf("expected warn level, got %v", runner.logger.GetLevel())
			}
		})

		t.Run("missing explicit config fails", func(t *testing.T) {
			runner, _, _ := setupRunner(t, nil)
			err := run(t, runner, "--config", filepath.Join(t.TempDir(), "nope.toml"), "catalog", "tags")
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("verbose enables debug", func(t *testing.T) {
			runner, output, _ := setupRunner(t, nil)
			if err := run(t, runner, "--verbose", "catalog", "tags"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
			}
			if !strings.Contains(output.String(), "tutorial") {
				t.Errorf("expected the command to run, got %q", output.String())
			}
		})

		t.Run("version flag is not shadowed", func(t *testing.T) {
			runner, output, _ := setupRunner(t, nil)
			app := newApp(runner)
			versionOut := &bytes.Buffer{}
			app.Writer = versionOut

			if err := app.Run(context.Background(), []string{"wvp", "-v"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(versionOut.String(), app.Version) {
				t.Errorf("expected version output, got %q", versionOut.String())
			}
			if output.Len() != 0 {
				t.Errorf("expected no command output, got %q", output.String())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("returns error for unmarshalable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected error for channel value")
			}
		})

		t.Run("returns error when writer fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON(map[string]string{"k": "v"}, false); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlainHeader("Title")
		runner.writePlainln("line %d", 1)

		result := output.String()
		if !strings.Contains(result, "Title\n") || !strings.Contains(result, "\nline 1\n") {
			t.Errorf("unexpected output %q", result)
		}
	})
}

func TestServeHelpers(t *testing.T) {
	t.Run("newHTTPServer", func(t *testing.T) {
		srv := newHTTPServer(":0", http.NotFoundHandler())
		if srv.ReadTimeout != 10*time.Second || srv.ReadHeaderTimeout != 5*time.Second {
			t.Errorf("unexpected read timeouts %v / %v", srv.ReadTimeout, srv.ReadHeaderTimeout)
		}
		if srv.WriteTimeout != 10*time.Second || srv.IdleTimeout != 60*time.Second {
			t.Errorf("unexpected write/idle timeouts %v / %v", srv.WriteTimeout, srv.IdleTimeout)
		}
	})

	t.Run("browserURL", func(t *testing.T) {
		tc := []struct {
			addr string
			want string
		}{
			{"127.0.0.1:5001", "http://127.0.0.1:5001"},
			{"0.0.0.0:8080", "http://localhost:8080"},
			{"[::]:8080", "http://localhost:8080"},
			{":9000", "http://localhost:9000"},
		}
		for _, tt := range tc {
			if got := browserURL(tt.addr); got != tt.want {
				t.Errorf("browserURL(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conf", "config.toml")
		runner, output, _ := setupRunner(t, nil)
		runner.configPath = path

		if err := run(t, runner, "setup", "config"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), path) {
			t.Errorf("expected path in output, got %q", output.String())
		}

		if err := run(t, runner, "setup", "config"); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("database and rollback", func(t *testing.T) {
		runner, output, _ := setupRunner(t, nil)
		runner.config.Database.Path = filepath.Join(t.TempDir(), "data", "media.db")

		if err := run(t, runner, "setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, runner.config.Database.Path)
		if !strings.Contains(output.String(), "schema version 1") {
			t.Errorf("expected schema version in output, got %q", output.String())
		}

		if err := run(t, runner, "setup", "rollback"); err != nil {
			t.Fatalf("expected rollback to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "schema version is now 0") {
			t.Errorf("expected version 0 after rollback, got %q", output.String())
		}
	})
}

func decodeStore(t *testing.T, store *snapshot.MemoryStore) *snapshot.Snapshot {
	t.Helper()
	snap, ok := store.Load()
	if !ok {
		t.Fatalf("expected a saved snapshot, got %q", store.Raw())
	}
	return snap
}

func TestCatalogCommands(t *testing.T) {
	t.Run("list offline", func(t *testing.T) {
		runner, output, _ := setupRunner(t, nil)
		if err := run(t, runner, "catalog", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "Frontend basics: player walkthrough") {
			t.Errorf("expected demo video in output, got %q", out)
		}
		if !strings.Contains(out, "[error] Offline mode") {
			t.Errorf("expected offline status, got %q", out)
		}
	})

	t.Run("list json with tag", func(t *testing.T) {
		runner, output, _ := setupRunner(t, nil)
		if err := run(t, runner, "catalog", "list", "--kind", "photos", "--tag", "promo", "--format", "json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := output.String()
		if !strings.Contains(out, `"title": "Product shots"`) || strings.Contains(out, "Team photo") {
			t.Errorf("expected only the promo photo, got %s", out)
		}
	})

	t.Run("list rejects bad format and kind", func(t *testing.T) {
		runner, _, _ := setupRunner(t, nil)
		if err := run(t, runner, "catalog", "list", "--format", "xml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if err := run(t, runner, "catalog", "list", "--kind", "audio"); !errors.Is(err, shared.ErrInvalidKind) {
			t.Errorf("expected ErrInvalidKind, got %v", err)
		}
	})

	t.Run("tags", func(t *testing.T) {
		runner, output, _ := setupRunner(t, nil)
		if err := run(t, runner, "catalog", "tags", "--all"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, tag := range []string{"tutorial", "landscape", "promo"} {
			if !strings.Contains(output.String(), tag) {
				t.Errorf("expected tag %q in output", tag)
			}
		}
	})

	t.Run("add persists to backend", func(t *testing.T) {
		backend := tu.NewFakeBackend(42)
		runner, output, store := setupRunner(t, backend)

		if err := run(t, runner, "catalog", "add", "--title", "New clip", "--tags", "a,b", "videos/new.mp4"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "✓ Added New clip (id 1000042)") {
			t.Errorf("expected derived id in output, got %q", out)
		}
		if !strings.Contains(out, "stored on backend as 42") {
			t.Errorf("expected backend id in output, got %q", out)
		}

		snap := decodeStore(t, store)
		if len(snap.Videos) == 0 || snap.Videos[0].BackendID != 42 {
			t.Fatalf("expected persisted video first in snapshot, got %+v", snap.Videos)
		}
		if snap.CurrentVideoID == nil || *snap.CurrentVideoID != 1000042 {
			t.Errorf("expected selection to follow the derived id, got %v", snap.CurrentVideoID)
		}
		if !reflect.DeepEqual(backend.Created[0].Tags, []string{"a", "b"}) {
			t.Errorf("expected tags sent to backend, got %v", backend.Created[0].Tags)
		}
	})

	t.Run("add without persisting", func(t *testing.T) {
		backend := tu.NewFakeBackend(42)
		runner, output, _ := setupRunner(t, backend)

		if err := run(t, runner, "catalog", "add", "--no-persist", "videos/local.mp4"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if backend.CreateCalls() != 0 {
			t.Errorf("expected no backend create, got %d", backend.CreateCalls())
		}
		if !strings.Contains(output.String(), models.DefaultVideoTitle) {
			t.Errorf("expected default title, got %q", output.String())
		}
	})

	t.Run("add requires src", func(t *testing.T) {
		runner, _, _ := setupRunner(t, nil)
		if err := run(t, runner, "catalog", "add"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("tag add and remove", func(t *testing.T) {
		runner, output, store := setupRunner(t, nil)

		if err := run(t, runner, "catalog", "tag", "add", "1", "x, tutorial，y"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "tutorial, frontend, x, y") {
			t.Errorf("unexpected tags output %q", output.String())
		}

		if err := run(t, runner, "catalog", "tag", "remove", "1", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := decodeStore(t, store).Videos[0].Tags; !reflect.DeepEqual(got, []string{"tutorial", "x", "y"}) {
			t.Errorf("expected frontend removed, got %v", got)
		}

		if err := run(t, runner, "catalog", "tag", "remove", "999", "1"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound from tag remove, got %v", err)
		}
		if err := run(t, runner, "catalog", "tag", "add", "999", "x"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := run(t, runner, "catalog", "tag", "add", "abc", "x"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("tag add echoes backend videos", func(t *testing.T) {
		backend := tu.NewFakeBackend(100, models.RemoteRecord{ID: 5, Title: "Remote", Src: "r.mp4", Tags: []string{"a"}})
		runner, _, _ := setupRunner(t, backend)

		if err := run(t, runner, "catalog", "tag", "add", "1000005", "b"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tags, ok := backend.TagsFor(5); !ok || !reflect.DeepEqual(tags, []string{"a", "b"}) {
			t.Errorf("expected echoed tags [a b], got %v", tags)
		}
	})

	t.Run("remove", func(t *testing.T) {
		runner, output, store := setupRunner(t, nil)

		if err := run(t, runner, "catalog", "remove", "--kind", "photo", "102"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Removed Team photo") {
			t.Errorf("unexpected output %q", output.String())
		}
		if got := len(decodeStore(t, store).Photos); got != 2 {
			t.Errorf("expected 2 photos left, got %d", got)
		}

		if err := run(t, runner, "catalog", "remove", "--kind", "photo", "102"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second remove, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		backend := tu.NewFakeBackend(100, models.RemoteRecord{ID: 5, Title: "Remote", Src: "r.mp4"})
		runner, _, _ := setupRunner(t, backend)

		if err := run(t, runner, "catalog", "delete", "1000005"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := backend.DeletedIDs(); !reflect.DeepEqual(got, []int64{5}) {
			t.Errorf("expected backend delete of 5, got %v", got)
		}

		if err := run(t, runner, "catalog", "delete", "424242"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("select and filter", func(t *testing.T) {
		runner, output, store := setupRunner(t, nil)

		if err := run(t, runner, "catalog", "select", "--kind", "photo", "103"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		snap := decodeStore(t, store)
		if snap.CurrentTab != models.KindPhoto || snap.CurrentPhotoID == nil || *snap.CurrentPhotoID != 103 {
			t.Errorf("expected photo 103 selected on photo tab, got %s %v", snap.CurrentTab, snap.CurrentPhotoID)
		}
		if err := run(t, runner, "catalog", "select", "--kind", "video", "103"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound selecting a photo id as video, got %v", err)
		}

		if err := run(t, runner, "catalog", "filter", "promo"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Filter: #promo (1 photos)") {
			t.Errorf("unexpected filter output %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "catalog", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Product shots") || strings.Contains(output.String(), "Team photo") {
			t.Errorf("expected the stored filter to apply, got %q", output.String())
		}

		if err := run(t, runner, "catalog", "filter"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if decodeStore(t, store).ActiveTag != "" {
			t.Error("expected filter cleared")
		}
	})

	t.Run("sync", func(t *testing.T) {
		t.Run("offline", func(t *testing.T) {
			runner, _, _ := setupRunner(t, nil)
			if err := run(t, runner, "catalog", "sync"); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("merges records", func(t *testing.T) {
			backend := tu.NewFakeBackend(100, models.RemoteRecord{ID: 7, Title: "Seven", Src: "7.mp4"})
			runner, output, store := setupRunner(t, backend)

			if err := run(t, runner, "catalog", "sync"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "[ok] Connected to backend · 1 videos") {
				t.Errorf("unexpected status output %q", output.String())
			}
			if videos := decodeStore(t, store).Videos; len(videos) != 4 || videos[0].ID != 1000007 {
				t.Errorf("expected merged record first, got %+v", videos)
			}
		})

		t.Run("unreachable", func(t *testing.T) {
			backend := tu.NewFakeBackend(100)
			backend.FetchErr = shared.ErrUnreachable
			runner, _, _ := setupRunner(t, backend)

			if err := run(t, runner, "catalog", "sync"); !errors.Is(err, shared.ErrUnreachable) {
				t.Errorf("expected ErrUnreachable, got %v", err)
			}
		})
	})

	t.Run("export", func(t *testing.T) {
		dir := t.TempDir()
		runner, output, _ := setupRunner(t, nil)

		jsonPath := filepath.Join(dir, "library.json")
		if err := run(t, runner, "catalog", "export", "--format", "json", "--output", jsonPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		content := tu.MustReadFile(t, jsonPath)
		if !strings.Contains(content, `"kind": "video"`) || !strings.Contains(content, `"kind": "photo"`) {
			t.Errorf("expected both kinds in library export, got %s", content)
		}
		if !strings.Contains(output.String(), "Exported 6 items") {
			t.Errorf("unexpected output %q", output.String())
		}

		base := filepath.Join(dir, "videos")
		if err := run(t, runner, "catalog", "export", "--format", "csv", "--kind", "video", "--output", base); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, base+"_items.csv")
		tu.AssertFileExists(t, base+"_metadata.json")

		mdDir := filepath.Join(dir, "md")
		if err := run(t, runner, "catalog", "export", "--format", "md", "--output", mdDir); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(mdDir, "README.md"))

		htmlPath := filepath.Join(dir, "library.html")
		if err := run(t, runner, "catalog", "export", "--format", "html", "--compress", "--output", htmlPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		data, err := formatter.ReadCompressedFile(htmlPath + ".zst")
		if err != nil {
			t.Fatalf("expected compressed html export, got %v", err)
		}
		if !strings.Contains(string(data), "<h2>Photos</h2>") {
			t.Errorf("unexpected html export %s", data)
		}

		if err := run(t, runner, "catalog", "export", "--format", "csv", "--compress"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag for compressed csv, got %v", err)
		}
	})
}

func TestParseID(t *testing.T) {
	if id, err := parseID("id", " 42 "); err != nil || id != 42 {
		t.Errorf("expected 42, got %d (%v)", id, err)
	}
	if _, err := parseID("id", ""); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
	if _, err := parseID("position", "two"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
