package nestegg

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MarshalJSON encodes the history as a JSON array of entries, each carrying
// its `kind` discriminator.
func (h *History) MarshalJSON() ([]byte, error) {
	if h.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.entries)
}

// UnmarshalJSON decodes a JSON array of history entries, dispatching each one
// on its `kind` discriminator. The cap is not part of the payload; callers
// set it after decoding.
func (h *History) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		e, err := decodeEntry(raw)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	h.entries = entries
	return nil
}

// decodeEntry decodes one history entry from its JSON object, using the
// `kind` field to pick the concrete type.
func decodeEntry(raw []byte) (Entry, error) {
	var identifier struct {
		Kind EntryKind `json:"kind"`
	}
	if err := json.Unmarshal(raw, &identifier); err != nil {
		return nil, fmt.Errorf("could not identify kind in entry %q: %w", string(raw), err)
	}

	switch identifier.Kind {
	case KindBalanceUpdate:
		var e BalanceUpdate
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("could not decode balance_update entry: %w", err)
		}
		return e, nil
	case KindAccountCreated:
		var e AccountCreated
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("could not decode account_created entry: %w", err)
		}
		return e, nil
	case KindAccountsMerged:
		var e AccountsMerged
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("could not decode accounts_merged entry: %w", err)
		}
		return e, nil
	case KindAccountsUnmerged:
		var e AccountsUnmerged
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("could not decode accounts_unmerged entry: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown history entry kind %q", identifier.Kind)
	}
}

// encodeState serializes a state to its JSON payload.
func encodeState(st *State) ([]byte, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("could not encode state: %w", err)
	}
	return data, nil
}

// decodeState deserializes a state from its JSON payload.
func decodeState(data []byte) (*State, error) {
	st := NewState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("could not decode state: %w", err)
	}
	if st.History == nil {
		st.History = NewHistory(DefaultHistoryCap)
	}
	return st, nil
}
