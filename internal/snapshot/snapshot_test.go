package snapshot

import (
	"path/filepath"
	"testing"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	want := World{
		Loot: []LootRecord{{ID: 1, Type: 0, X: 3, Y: 4}},
		Dogs: []DogRecord{{ID: 1, Name: "Alice", BagLootIDs: []int{1}}},
		Sessions: []SessionRecord{
			{ID: 1, MapID: "map1", DogIDs: []int{1}},
		},
		Players: []PlayerRecord{{ID: 1, Token: "deadbeef", DogID: 1, SessionID: 1}},
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got.Loot) != 1 || got.Loot[0] != want.Loot[0] {
		t.Errorf("Loot round-trip mismatch: %+v", got.Loot)
	}
	if len(got.Dogs) != 1 || got.Dogs[0].Name != "Alice" {
		t.Errorf("Dogs round-trip mismatch: %+v", got.Dogs)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].MapID != "map1" {
		t.Errorf("Sessions round-trip mismatch: %+v", got.Sessions)
	}
	if len(got.Players) != 1 || got.Players[0].Token != "deadbeef" {
		t.Errorf("Players round-trip mismatch: %+v", got.Players)
	}
}

func TestSaveLeavesPreviousSnapshotOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	if err := Save(path, World{Loot: []LootRecord{{ID: 1}}}); err != nil {
		t.Fatalf("initial Save: %v", err)
	}

	// Saving to a directory whose parent doesn't exist should fail without
	// touching the already-published snapshot.
	badPath := filepath.Join(dir, "missing-subdir", "state.json")
	if err := Save(badPath, World{Loot: []LootRecord{{ID: 2}}}); err == nil {
		t.Fatal("expected Save to fail for a nonexistent directory")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Loot) != 1 || got.Loot[0].ID != 1 {
		t.Fatalf("expected original snapshot intact, got %+v", got.Loot)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	if Exists(path) {
		t.Error("expected Exists to be false before Save")
	}
	if err := Save(path, World{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists(path) {
		t.Error("expected Exists to be true after Save")
	}
}
