package publicid

import (
	"errors"
	"strings"
	"testing"

	"github.com/atkinsj/dumpbin/internal/models"
)

func TestAllocate_SingleDrawWhenNoCollision(t *testing.T) {
	t.Parallel()

	calls := 0
	id, err := New().Allocate(func(string) (bool, error) {
		calls++
		return false, nil
	})
	if err != nil {
		t.Fatalf("Allocate error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one draw, got %d", calls)
	}
	assertWellFormed(t, id)
}

func TestAllocate_AvoidsSeededCollisions(t *testing.T) {
	t.Parallel()

	taken := map[string]bool{"AAAAAA": true, "BBBBBB": true}

	for i := 0; i < 50; i++ {
		id, err := New().Allocate(func(candidate string) (bool, error) {
			return taken[candidate], nil
		})
		if err != nil {
			t.Fatalf("Allocate error: %v", err)
		}
		if taken[id] {
			t.Fatalf("allocated a taken id %q", id)
		}
		assertWellFormed(t, id)
	}
}

func TestAllocate_Exhaustion(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := New().Allocate(func(string) (bool, error) {
		calls++
		return true, nil
	})
	if !errors.Is(err, models.ErrAllocationExhausted) {
		t.Fatalf("expected ErrAllocationExhausted, got %v", err)
	}
	if calls != maxAttempts {
		t.Fatalf("expected %d attempts before giving up, got %d", maxAttempts, calls)
	}
}

func TestAllocate_ExistsCheckError(t *testing.T) {
	t.Parallel()

	boom := errors.New("store offline")
	_, err := New().Allocate(func(string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func assertWellFormed(t *testing.T, id string) {
	t.Helper()
	if len(id) != Length {
		t.Fatalf("id %q has length %d, want %d", id, len(id), Length)
	}
	for _, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			t.Fatalf("id %q contains %q outside the alphabet", id, c)
		}
	}
}
