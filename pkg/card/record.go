package card

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// record is the persisted shape of a card. Numbers are read loosely since
// the stored list may have been written by hand or by older clients.
type record struct {
	ID      looseString `json:"id"`
	Name    looseString `json:"name"`
	Max     looseNumber `json:"max"`
	Current looseNumber `json:"current"`
}

type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch v := v.(type) {
	case nil:
		*n = 0
	case float64:
		*n = looseNumber(v)
	case bool:
		if v {
			*n = 1
		} else {
			*n = 0
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = looseNumber(math.NaN())
			return nil
		}
		*n = looseNumber(f)
	default:
		*n = looseNumber(math.NaN())
	}
	return nil
}

func (n looseNumber) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	*s = looseString(bytes.TrimSpace(data))
	return nil
}

func emptyRecord() record {
	return record{
		Max:     looseNumber(math.NaN()),
		Current: looseNumber(math.NaN()),
	}
}

func decodeCards(data []byte) ([]Card, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode card list: %w", err)
	}

	cards := make([]Card, 0, len(raw))
	for _, item := range raw {
		rec := emptyRecord()
		// Entries that are not objects still count as cards, with no
		// usable numbers.
		if err := json.Unmarshal(item, &rec); err != nil {
			rec = emptyRecord()
		}
		cards = append(cards, Card{
			ID:      string(rec.ID),
			Name:    string(rec.Name),
			Max:     float64(rec.Max),
			Current: float64(rec.Current),
		})
	}
	return cards, nil
}

func encodeCards(cards []Card) ([]byte, error) {
	records := make([]record, len(cards))
	for i, c := range cards {
		records[i] = record{
			ID:      looseString(c.ID),
			Name:    looseString(c.Name),
			Max:     looseNumber(c.Max),
			Current: looseNumber(c.Current),
		}
	}
	return json.Marshal(records)
}
