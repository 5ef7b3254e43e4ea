package players

import "testing"

func TestAddMintsDistinctLowercaseHexTokens(t *testing.T) {
	r := NewRegistry()

	p1, err := Add(r, 1, 10, 100)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	p2, err := Add(r, 2, 11, 100)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if len(p1.Token) != 32 || len(p2.Token) != 32 {
		t.Fatalf("expected 32-char tokens, got %q and %q", p1.Token, p2.Token)
	}
	if p1.Token == p2.Token {
		t.Fatal("expected distinct tokens")
	}
	for _, c := range p1.Token {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Fatalf("token %q is not lowercase hex", p1.Token)
		}
	}
}

func TestFindByTokenRoundTrips(t *testing.T) {
	r := NewRegistry()
	p, _ := Add(r, 1, 10, 100)

	got, err := r.FindByToken(p.Token)
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if got.DogID != 10 || got.SessionID != 100 {
		t.Fatalf("unexpected player %+v", got)
	}
}

func TestFindByTokenUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.FindByToken("nonexistent"); err != ErrUnknownToken {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}
}

func TestRemoveByDogIDDropsPlayer(t *testing.T) {
	r := NewRegistry()
	p, _ := Add(r, 1, 10, 100)

	r.RemoveByDogID(10)

	if _, err := r.FindByToken(p.Token); err != ErrUnknownToken {
		t.Fatalf("expected token to be removed, got err=%v", err)
	}
	if r.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", r.Count())
	}
}

func TestRemoveByDogIDUnknownIsNoOp(t *testing.T) {
	r := NewRegistry()
	Add(r, 1, 10, 100)

	r.RemoveByDogID(999)

	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 (no-op on unknown dog)", r.Count())
	}
}

func TestRestoreReinsertsKnownPlayer(t *testing.T) {
	r := NewRegistry()
	p := &Player{ID: 5, Token: "deadbeef", DogID: 1, SessionID: 2}

	r.Restore(p)

	got, err := r.FindByToken("deadbeef")
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if got.ID != 5 {
		t.Fatalf("got.ID = %d, want 5", got.ID)
	}
	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", r.Count())
	}
}

func TestAllReturnsEveryPlayer(t *testing.T) {
	r := NewRegistry()
	Add(r, 1, 10, 100)
	Add(r, 2, 11, 100)

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d players, want 2", len(all))
	}
}
