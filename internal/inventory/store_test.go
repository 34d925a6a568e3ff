package inventory

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/reciperescue/internal/expiry"
	"github.com/dukerupert/reciperescue/internal/model"
)

var fixedNow = time.Date(2026, 5, 4, 18, 45, 0, 0, time.UTC)

func newTestStore() *Store {
	return NewStoreWithClock(func() time.Time { return fixedNow })
}

func TestAddManualEmptyNameRejected(t *testing.T) {
	s := newTestStore()
	s.AddManual("Milk", "")

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, ok := s.AddManual(name, "2026-05-10"); ok {
			t.Errorf("AddManual(%q) ok = true, want false", name)
		}
	}
	if got := s.Len(); got != 1 {
		t.Errorf("len = %d, want 1", got)
	}
}

func TestAddManualDefaults(t *testing.T) {
	s := newTestStore()

	ing, ok := s.AddManual("Milk", "")
	if !ok {
		t.Fatal("AddManual returned false")
	}
	if ing.ExpiryDate != "2026-05-07" {
		t.Errorf("expiry = %q, want %q", ing.ExpiryDate, "2026-05-07")
	}
	if ing.Category != model.CategoryOther {
		t.Errorf("category = %q, want %q", ing.Category, model.CategoryOther)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}

	status := expiry.Classify(ing.ExpiryDate, fixedNow)
	if status.Status != expiry.StatusExpiringSoon {
		t.Errorf("status = %q, want %q", status.Status, expiry.StatusExpiringSoon)
	}
}

func TestAddManualKeepsDateAndTrimsName(t *testing.T) {
	s := newTestStore()

	ing, _ := s.AddManual("  Butter ", "2026-06-01")
	if ing.Name != "Butter" {
		t.Errorf("name = %q, want %q", ing.Name, "Butter")
	}
	if ing.ExpiryDate != "2026-06-01" {
		t.Errorf("expiry = %q, want %q", ing.ExpiryDate, "2026-06-01")
	}
}

func TestManualIDsUniqueWithinSameMillisecond(t *testing.T) {
	s := newTestStore()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ing, _ := s.AddManual("Eggs", "")
		if seen[ing.ID] {
			t.Fatalf("duplicate id %q", ing.ID)
		}
		seen[ing.ID] = true
	}
	if s.Len() != 50 {
		t.Errorf("len = %d, want 50 (no dedupe by name)", s.Len())
	}
}

func TestAddBatch(t *testing.T) {
	s := newTestStore()
	s.AddManual("Existing", "2026-05-20")

	added := s.AddBatch([]model.RecognizedItem{
		{Name: "Spinach", Quantity: "1 bag", Category: "produce", ExpiryDate: "2026-05-05"},
		{Name: "Spinach", Category: "produce"},
		{Name: "Cheddar", Category: "cheese-ish"},
		{Name: "Mystery jar", Category: ""},
	})
	if len(added) != 4 {
		t.Fatalf("added = %d, want 4", len(added))
	}

	ids := make(map[string]bool)
	for _, ing := range added {
		if !strings.HasPrefix(ing.ID, "ing-") {
			t.Errorf("id = %q, want ing- prefix", ing.ID)
		}
		if ids[ing.ID] {
			t.Errorf("duplicate id %q within batch", ing.ID)
		}
		ids[ing.ID] = true
	}

	if added[2].Category != model.CategoryDairy {
		t.Errorf("invalid category normalized to %q, want %q", added[2].Category, model.CategoryDairy)
	}
	if added[3].Category != model.CategoryOther {
		t.Errorf("unknown item category = %q, want %q", added[3].Category, model.CategoryOther)
	}

	all := s.List()
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	if all[0].Name != "Existing" {
		t.Errorf("first item = %q, want existing item untouched", all[0].Name)
	}
	for i, want := range []string{"Spinach", "Spinach", "Cheddar", "Mystery jar"} {
		if all[i+1].Name != want {
			t.Errorf("item %d = %q, want %q", i+1, all[i+1].Name, want)
		}
	}
}

func TestAddBatchIDsDifferAcrossBatches(t *testing.T) {
	s := newTestStore()
	a := s.AddBatch([]model.RecognizedItem{{Name: "Kale"}})
	b := s.AddBatch([]model.RecognizedItem{{Name: "Kale"}})
	if a[0].ID == b[0].ID {
		t.Errorf("batches reused id %q", a[0].ID)
	}
}

func TestAddBatchEmpty(t *testing.T) {
	s := newTestStore()
	if added := s.AddBatch(nil); len(added) != 0 {
		t.Errorf("added = %d, want 0", len(added))
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore()
	a, _ := s.AddManual("A", "")
	b, _ := s.AddManual("B", "")
	c, _ := s.AddManual("C", "")

	if _, ok := s.Remove("nope"); ok {
		t.Error("Remove(unknown) ok = true, want false")
	}
	if s.Len() != 3 {
		t.Fatalf("len after unknown remove = %d, want 3", s.Len())
	}

	removed, ok := s.Remove(b.ID)
	if !ok || removed.ID != b.ID {
		t.Fatalf("Remove(%q) = %v, %v", b.ID, removed, ok)
	}
	all := s.List()
	if len(all) != 2 || all[0].ID != a.ID || all[1].ID != c.ID {
		t.Errorf("remaining = %v, want [%s %s]", all, a.ID, c.ID)
	}

	if _, ok := s.Get(b.ID); ok {
		t.Error("removed item still retrievable")
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := newTestStore()
	s.AddManual("Milk", "")

	list := s.List()
	list[0].Name = "changed"

	if got, _ := s.Get(list[0].ID); got.Name != "Milk" {
		t.Errorf("store item mutated through List copy: %q", got.Name)
	}
}

func TestExpiryScenario(t *testing.T) {
	s := newTestStore()

	eggs, _ := s.AddManual("Eggs", expiry.AddDays(fixedNow, -1))
	if r := expiry.Classify(eggs.ExpiryDate, fixedNow); r.Status != expiry.StatusExpired || r.Label != "Expired" {
		t.Errorf("eggs = %+v, want expired", r)
	}

	butter, _ := s.AddManual("Butter", expiry.AddDays(fixedNow, 10))
	if r := expiry.Classify(butter.ExpiryDate, fixedNow); r.Status != expiry.StatusGood {
		t.Errorf("butter = %+v, want good", r)
	}

	s.Remove(eggs.ID)
	all := s.List()
	if len(all) != 1 || all[0].Name != "Butter" {
		t.Errorf("inventory = %v, want only Butter", all)
	}
}

func TestConcurrentAdds(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddManual("Apple", "")
			s.AddBatch([]model.RecognizedItem{{Name: "Pear"}, {Name: "Plum"}})
		}()
	}
	wg.Wait()

	if s.Len() != 60 {
		t.Fatalf("len = %d, want 60", s.Len())
	}
	seen := make(map[string]bool)
	for _, it := range s.List() {
		if seen[it.ID] {
			t.Fatalf("duplicate id %q", it.ID)
		}
		seen[it.ID] = true
	}
}
