// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := newStoreWithPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetOrCreateProject(t *testing.T) {
	store := newTestStore(t)

	first, err := store.GetOrCreateProject("https://www.producthunt.com/visit-streaks", "producthunt.com")
	if err != nil {
		t.Fatalf("GetOrCreateProject() failed: %v", err)
	}

	t.Run("SameDomain_ReturnsSameProject", func(t *testing.T) {
		again, err := store.GetOrCreateProject("https://www.producthunt.com/visit-streaks?ref=nav", "producthunt.com")
		if err != nil {
			t.Fatalf("GetOrCreateProject() failed: %v", err)
		}
		if again.ID != first.ID {
			t.Errorf("Expected project %d, got %d", first.ID, again.ID)
		}
		if again.URL != "https://www.producthunt.com/visit-streaks?ref=nav" {
			t.Errorf("Expected URL to be updated, got %q", again.URL)
		}
	})

	t.Run("DeleteNonExistentProject_ReturnsError", func(t *testing.T) {
		err := store.DeleteProject(999999)
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("Expected 'not found' error, got: %v", err)
		}
	})

	t.Run("DeleteProject_RemovesIt", func(t *testing.T) {
		if err := store.DeleteProject(first.ID); err != nil {
			t.Fatalf("DeleteProject() failed: %v", err)
		}
		projects, err := store.GetAllProjects()
		if err != nil {
			t.Fatalf("GetAllProjects() failed: %v", err)
		}
		if len(projects) != 0 {
			t.Errorf("Expected no projects, got %d", len(projects))
		}
	})
}

func TestConfigDefaultsAndUpdate(t *testing.T) {
	store := newTestStore(t)
	project, err := store.GetOrCreateProject("https://example.com/board", "example.com")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	config, err := store.GetOrCreateConfig(project.ID)
	if err != nil {
		t.Fatalf("GetOrCreateConfig() failed: %v", err)
	}
	if config.Strategy != "scroll" || config.Workers != 1 || config.Limit != 0 || config.DropUnresolved {
		t.Errorf("Unexpected defaults: %+v", config)
	}

	if err := store.UpdateConfig(project.ID, "paginate", 50, 3, true, true, "bot/2"); err != nil {
		t.Fatalf("UpdateConfig() failed: %v", err)
	}
	config, err = store.GetOrCreateConfig(project.ID)
	if err != nil {
		t.Fatalf("GetOrCreateConfig() failed: %v", err)
	}
	if config.Strategy != "paginate" || config.Limit != 50 || config.Workers != 3 || !config.DropUnresolved || !config.RespectRobots || config.UserAgent != "bot/2" {
		t.Errorf("Config not updated: %+v", config)
	}

	// Zero values must be written too
	if err := store.UpdateConfig(project.ID, "scroll", 0, 0, false, false, ""); err != nil {
		t.Fatalf("UpdateConfig() failed: %v", err)
	}
	config, _ = store.GetOrCreateConfig(project.ID)
	if config.Limit != 0 || config.Workers != 1 || config.DropUnresolved || config.RespectRobots {
		t.Errorf("Zero values not persisted: %+v", config)
	}
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)
	project, err := store.GetOrCreateProject("https://example.com/board", "example.com")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	run, err := store.CreateRun(project.ID, "https://example.com/board", "scroll", 5)
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	if run.State != RunStateInProgress {
		t.Errorf("Expected State = %q, got %q", RunStateInProgress, run.State)
	}

	t.Run("RecordsKeepDiscoveryOrder", func(t *testing.T) {
		for _, pos := range []int{2, 0, 1} {
			rec := &Record{RunID: run.ID, Position: pos, Name: string(rune('A' + pos)), ProfileURL: "https://example.com/@" + string(rune('a'+pos))}
			if pos == 1 {
				if err := rec.SetOtherLinksArray([]string{"https://a.dev", "https://b.dev"}); err != nil {
					t.Fatalf("SetOtherLinksArray() failed: %v", err)
				}
			}
			if err := store.SaveRecord(rec); err != nil {
				t.Fatalf("SaveRecord() failed: %v", err)
			}
		}

		records, err := store.GetRunRecords(run.ID)
		if err != nil {
			t.Fatalf("GetRunRecords() failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(records))
		}
		for i, r := range records {
			if r.Position != i {
				t.Errorf("Record %d has position %d", i, r.Position)
			}
		}
		if got := records[0].GetOtherLinksArray(); got == nil || len(got) != 0 {
			t.Errorf("Expected empty non-nil other links, got %#v", got)
		}
		if got := records[1].GetOtherLinksArray(); len(got) != 2 || got[1] != "https://b.dev" {
			t.Errorf("Unexpected other links: %#v", got)
		}

		found, err := store.SearchRunRecords(run.ID, "@c")
		if err != nil {
			t.Fatalf("SearchRunRecords() failed: %v", err)
		}
		if len(found) != 1 || found[0].Name != "C" {
			t.Errorf("Unexpected search result: %+v", found)
		}
	})

	t.Run("FinishRunCountsRowsAndState", func(t *testing.T) {
		if err := store.SaveDiagnostic(&Diagnostic{RunID: run.ID, Kind: "parse", Message: "row has no name"}); err != nil {
			t.Fatalf("SaveDiagnostic() failed: %v", err)
		}
		if err := store.FinishRun(run.ID, RunStateFinished, true, ""); err != nil {
			t.Fatalf("FinishRun() failed: %v", err)
		}

		got, err := store.GetRun(run.ID)
		if err != nil {
			t.Fatalf("GetRun() failed: %v", err)
		}
		if got.State != RunStateFinished || !got.LimitReached || got.RecordCount != 3 || got.DiagnosticCount != 1 || got.FinishedAt == 0 {
			t.Errorf("Unexpected finished run: %+v", got)
		}

		latest, err := store.GetLatestRun(project.ID)
		if err != nil || latest == nil || latest.ID != run.ID {
			t.Errorf("GetLatestRun() = %+v, %v", latest, err)
		}
	})

	t.Run("FinishUnknownRun_ReturnsError", func(t *testing.T) {
		if err := store.FinishRun(999999, RunStateAborted, false, "boom"); err == nil {
			t.Error("Expected error for unknown run")
		}
	})

	t.Run("ListRunsNewestFirst", func(t *testing.T) {
		second, err := store.CreateRun(project.ID, "https://example.com/board", "paginate", 0)
		if err != nil {
			t.Fatalf("CreateRun() failed: %v", err)
		}
		runs, err := store.ListRuns(0)
		if err != nil {
			t.Fatalf("ListRuns() failed: %v", err)
		}
		if len(runs) != 2 || runs[0].ID != second.ID {
			t.Errorf("Unexpected run order: %+v", runs)
		}
		limited, _ := store.ListRuns(1)
		if len(limited) != 1 {
			t.Errorf("Expected 1 run, got %d", len(limited))
		}
	})

	t.Run("DeleteRunRemovesChildren", func(t *testing.T) {
		if err := store.DeleteRun(run.ID); err != nil {
			t.Fatalf("DeleteRun() failed: %v", err)
		}
		records, _ := store.GetRunRecords(run.ID)
		diagnostics, _ := store.GetRunDiagnostics(run.ID)
		if len(records) != 0 || len(diagnostics) != 0 {
			t.Errorf("Expected children to be deleted, got %d records and %d diagnostics", len(records), len(diagnostics))
		}
		if _, err := store.GetRun(run.ID); err == nil {
			t.Error("Expected deleted run to be gone")
		}
		if err := store.DeleteRun(run.ID); err == nil {
			t.Error("Expected error deleting a missing run")
		}
	})
}
