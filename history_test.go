package nestegg

import (
	"testing"
	"time"
)

func stamped(e BalanceUpdate, at time.Time) BalanceUpdate {
	e.Timestamp = at
	return e
}

func TestHistoryAppendStampsAndSorts(t *testing.T) {
	h := NewHistory(0)
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	later := stamped(NewBalanceUpdate("a", "A", M(0, "USD"), M(10, "USD"), NewDate(2025, 3, 2)), t0.Add(time.Hour))
	earlier := stamped(NewBalanceUpdate("a", "A", M(10, "USD"), M(20, "USD"), NewDate(2025, 3, 1)), t0)
	h.Append(later)
	h.Append(earlier)

	var got []Entry
	for e := range h.Entries() {
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].When().Equal(t0) || !got[1].When().Equal(t0.Add(time.Hour)) {
		t.Errorf("entries not in timestamp order: %v then %v", got[0].When(), got[1].When())
	}

	// Unstamped entries get a timestamp on append.
	h.Append(NewBalanceUpdate("a", "A", M(20, "USD"), M(30, "USD"), Today()))
	for e := range h.Entries() {
		if e.When().IsZero() {
			t.Errorf("appended entry kept a zero timestamp")
		}
	}
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := stamped(NewBalanceUpdate("a", "A", M(i, "USD"), M(i+1, "USD"), NewDate(2025, 1, i+1)), t0.Add(time.Duration(i)*time.Hour))
		h.Append(e)
	}

	if h.Len() != 3 {
		t.Fatalf("Len = %d, want the cap of 3", h.Len())
	}
	// The three newest survive.
	var first Entry
	for e := range h.Entries() {
		first = e
		break
	}
	if !first.When().Equal(t0.Add(2 * time.Hour)) {
		t.Errorf("oldest surviving entry is %v, want the third appended", first.When())
	}
}

func TestHistoryQueryInclusive(t *testing.T) {
	h := NewHistory(0)
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		id := "a"
		if i%2 == 1 {
			id = "b"
		}
		h.Append(stamped(NewBalanceUpdate(id, "X", M(0, "USD"), M(1, "USD"), NewDate(2025, 6, i+1)), t0.AddDate(0, 0, i)))
	}

	tests := []struct {
		name       string
		accountID  string
		start, end time.Time
		expected   int
	}{
		{"all", "", time.Time{}, time.Time{}, 4},
		{"by account", "a", time.Time{}, time.Time{}, 2},
		{"inclusive bounds", "", t0, t0.AddDate(0, 0, 1), 2},
		{"start only", "", t0.AddDate(0, 0, 2), time.Time{}, 2},
		{"account and range", "b", t0.AddDate(0, 0, 1), t0.AddDate(0, 0, 1), 1},
		{"empty range", "", t0.AddDate(0, 1, 0), time.Time{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Query(tt.accountID, tt.start, tt.end)
			if len(got) != tt.expected {
				t.Errorf("Query returned %d entries, want %d", len(got), tt.expected)
			}
		})
	}
}

func TestHistoryFilters(t *testing.T) {
	h := NewHistory(0)
	h.Append(NewBalanceUpdate("a", "A", M(0, "USD"), M(1, "USD"), Today()))
	h.Append(NewAccountCreated("b", "B", M(5, "USD")))

	count := func(filters ...func(Entry) bool) int {
		n := 0
		for range h.Entries(filters...) {
			n++
		}
		return n
	}

	if got := count(ByKind(KindAccountCreated)); got != 1 {
		t.Errorf("ByKind(account_created) matched %d entries, want 1", got)
	}
	if got := count(ByAccount("a")); got != 1 {
		t.Errorf("ByAccount(a) matched %d entries, want 1", got)
	}
	if got := count(ByKind(KindBalanceUpdate), ByAccount("b")); got != 2 {
		t.Errorf("filters should union, matched %d entries, want 2", got)
	}
}

func TestHistoryJSONRoundTrip(t *testing.T) {
	h := NewHistory(500)
	t0 := time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC)
	h.Append(stamped(NewBalanceUpdate("a", "Checking", M(100.25, "USD"), M(250.75, "USD"), NewDate(2025, 2, 14)), t0))
	created := NewAccountCreated("b", "Savings", M(0, "USD"))
	created.Timestamp = t0.Add(time.Minute)
	h.Append(created)
	h.Append(AccountsMerged{
		baseEntry:    baseEntry{Event: KindAccountsMerged, Timestamp: t0.Add(2 * time.Minute)},
		SurvivorID:   "a",
		SurvivorName: "Checking",
		MergedIDs:    []string{"b"},
		MergedNames:  []string{"Savings"},
	})

	data, err := h.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	back := NewHistory(500)
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if back.Len() != h.Len() {
		t.Fatalf("round-trip lost entries: %d vs %d", back.Len(), h.Len())
	}
	orig := h.Query("", time.Time{}, time.Time{})
	got := back.Query("", time.Time{}, time.Time{})
	for i := range orig {
		if !orig[i].Equal(got[i]) {
			t.Errorf("entry %d differs after round-trip:\n got %#v\nwant %#v", i, got[i], orig[i])
		}
	}
}
