package card

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbekoff/staminabot/pkg/calc"
)

const StorageKey = "stamina-calculator.cards"

type Part struct {
	Key  string
	Name string
}

var PresetParts = []Part{
	{Key: "head", Name: "Head"},
	{Key: "torso", Name: "Torso"},
	{Key: "right_arm", Name: "Right arm"},
	{Key: "left_arm", Name: "Left arm"},
	{Key: "right_leg", Name: "Right leg"},
	{Key: "left_leg", Name: "Left leg"},
}

// Store holds the ordered card list and the selected card. Every change
// is written through to kv; write failures are logged and otherwise
// ignored so the calculator keeps working.
//
// A Store is not safe for concurrent use.
type Store struct {
	kv       KV
	key      string
	logger   *zap.Logger
	cards    []Card
	selected string
	newID    func() string
}

func NewStore(kv KV, key string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:     kv,
		key:    key,
		logger: logger.With(zap.String("storage_key", key)),
		newID:  uuid.NewString,
	}
}

// Load replaces the in-memory list with the persisted one. A missing key,
// a read failure or an undecodable list leaves the list empty; only read
// failures are returned.
func (s *Store) Load(ctx context.Context) error {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("failed to load cards", zap.Error(err))
		s.cards = nil
		s.dropStaleSelection()
		return fmt.Errorf("load cards: %w", err)
	}
	if !ok {
		s.cards = nil
		s.dropStaleSelection()
		return nil
	}

	cards, err := decodeCards(data)
	if err != nil {
		s.logger.Error("failed to decode cards, starting empty", zap.Error(err))
		s.cards = nil
		s.dropStaleSelection()
		return nil
	}
	s.cards = cards
	s.dropStaleSelection()
	s.logger.Debug("cards loaded", zap.Int("count", len(cards)))
	return nil
}

func (s *Store) save(ctx context.Context) {
	data, err := encodeCards(s.cards)
	if err != nil {
		s.logger.Error("failed to save cards", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.Error("failed to save cards", zap.Error(err))
	}
}

func (s *Store) Cards() []Card {
	return slices.Clone(s.cards)
}

func (s *Store) Len() int {
	return len(s.cards)
}

func (s *Store) Get(id string) (Card, bool) {
	i := s.index(id)
	if i < 0 {
		return Card{}, false
	}
	return s.cards[i], true
}

func (s *Store) Selected() (Card, bool) {
	if s.selected == "" {
		return Card{}, false
	}
	return s.Get(s.selected)
}

func (s *Store) SelectedID() string {
	return s.selected
}

func (s *Store) Select(id string) error {
	if s.index(id) < 0 {
		return fmt.Errorf("select %s: %w", id, ErrCardNotFound)
	}
	s.selected = id
	return nil
}

func (s *Store) Deselect() {
	s.selected = ""
}

func (s *Store) Add(ctx context.Context, name, rawMax string) Card {
	max := NormalizeMax(rawMax)
	c := Card{
		ID:      s.newID(),
		Name:    s.defaultName(name),
		Max:     max,
		Current: max,
	}
	s.cards = append(s.cards, c)
	s.save(ctx)
	s.logger.Info("card added", zap.String("id", c.ID), zap.String("name", c.Name), zap.Float64("max", c.Max))
	return c
}

// AddPreset appends one card per body part. Maximums are looked up by part
// key in rawMaxes and normalized like Add.
func (s *Store) AddPreset(ctx context.Context, rawMaxes map[string]string) []Card {
	added := make([]Card, 0, len(PresetParts))
	for _, part := range PresetParts {
		max := NormalizeMax(rawMaxes[part.Key])
		added = append(added, Card{
			ID:      s.newID(),
			Name:    part.Name,
			Max:     max,
			Current: max,
		})
	}
	s.cards = append(s.cards, added...)
	s.save(ctx)
	s.logger.Info("preset added", zap.Int("count", len(added)))
	return added
}

// Edit renames a card and changes its maximum, pulling Current down when
// it no longer fits.
func (s *Store) Edit(ctx context.Context, id, name, rawMax string) (Card, error) {
	i := s.index(id)
	if i < 0 {
		return Card{}, fmt.Errorf("edit %s: %w", id, ErrCardNotFound)
	}

	c := s.cards[i]
	c.Name = s.defaultName(name)
	c.Max = NormalizeMax(rawMax)
	c.Current = math.Min(c.Current, c.Max)
	s.cards[i] = c
	s.save(ctx)
	s.logger.Info("card edited", zap.String("id", id), zap.String("name", c.Name), zap.Float64("max", c.Max))
	return c, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if s.index(id) < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrCardNotFound)
	}
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes every card whose id is listed. Unknown ids are
// skipped.
func (s *Store) DeleteMany(ctx context.Context, ids []string) error {
	before := len(s.cards)
	s.cards = slices.DeleteFunc(s.cards, func(c Card) bool {
		return slices.Contains(ids, c.ID)
	})
	s.dropStaleSelection()
	s.save(ctx)
	s.logger.Info("cards deleted", zap.Int("count", before-len(s.cards)))
	return nil
}

// Commit parses input, clamps it to the card's bounds and stores it as the
// new current value rounded to calc.Precision places. ok is false when
// input is not a number.
func (s *Store) Commit(ctx context.Context, id, input string) (float64, bool, error) {
	i := s.index(id)
	if i < 0 {
		return 0, false, fmt.Errorf("commit %s: %w", id, ErrCardNotFound)
	}
	v, ok := calc.ParseNumber(input)
	if !ok {
		return 0, false, nil
	}

	value := calc.Round(Clamp(v, s.cards[i].Max))
	s.cards[i].Current = value
	s.save(ctx)
	s.logger.Debug("card committed", zap.String("id", id), zap.Float64("current", value))
	return value, true, nil
}

func (s *Store) defaultName(name string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	return fmt.Sprintf("Card_%d", len(s.cards)+1)
}

func (s *Store) dropStaleSelection() {
	if s.selected != "" && s.index(s.selected) < 0 {
		s.selected = ""
	}
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.cards, func(c Card) bool { return c.ID == id })
}
