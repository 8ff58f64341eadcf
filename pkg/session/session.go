package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/turbekoff/staminabot/pkg/calc"
	"github.com/turbekoff/staminabot/pkg/card"
)

var ErrNoSelection = errors.New("no card selected")

// Session is one user's editing context: the card store and the
// calculator buffer of the selected card. It is not safe for concurrent
// use.
type Session struct {
	store  *card.Store
	buffer calc.Buffer
	eval   calc.Evaluator
	logger *zap.Logger
}

func New(store *card.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		store:  store,
		eval:   calc.Lenient,
		logger: logger,
	}
	s.reseed()
	return s
}

// SetEvaluator swaps the expression policy used by equals.
func (s *Session) SetEvaluator(eval calc.Evaluator) {
	if eval == nil {
		eval = calc.Lenient
	}
	s.eval = eval
}

func (s *Session) Store() *card.Store {
	return s.store
}

func (s *Session) Buffer() calc.Buffer {
	return s.buffer
}

func (s *Session) Display() string {
	return s.buffer.Display()
}

// Active reports whether the keypad accepts input.
func (s *Session) Active() bool {
	_, ok := s.store.Selected()
	return ok
}

func (s *Session) Status() string {
	c, ok := s.store.Selected()
	if !ok {
		return "Select a card"
	}
	return fmt.Sprintf("%s: %s / %s", c.Name, calc.Format(c.Current), calc.Format(c.Max))
}

// Select switches the editing session to card id. Selecting the card that
// is already selected keeps the pending expression.
func (s *Session) Select(id string) error {
	if s.store.SelectedID() == id {
		return nil
	}
	if err := s.store.Select(id); err != nil {
		return err
	}
	s.reseed()
	return nil
}

func (s *Session) Deselect() {
	s.store.Deselect()
	s.reseed()
}

// Press applies a keypad button to the selected card's buffer. Equals
// evaluates and commits.
func (s *Session) Press(ctx context.Context, b Button) error {
	if !s.Active() {
		return ErrNoSelection
	}

	switch b.Action {
	case ActionDigit:
		s.buffer = s.buffer.Digit(b.Digit)
	case ActionOperator:
		s.buffer = s.buffer.Operator(b.Op)
	case ActionOpenParen:
		s.buffer = s.buffer.OpenParen()
	case ActionCloseParen:
		s.buffer = s.buffer.CloseParen()
	case ActionUndo:
		s.buffer = s.buffer.Undo()
	case ActionPercent:
		s.buffer = s.buffer.Percent()
	case ActionClear:
		s.reseed()
	case ActionEquals:
		_, err := s.Equals(ctx)
		return err
	default:
		return fmt.Errorf("%w: action %d", ErrUnknownButton, b.Action)
	}
	return nil
}

// Equals evaluates the pending expression and writes the result to the
// selected card. A degenerate expression leaves everything unchanged and
// reports false.
func (s *Session) Equals(ctx context.Context) (bool, error) {
	if !s.Active() {
		return false, ErrNoSelection
	}

	next, commit := s.buffer.Resolve(s.eval)
	if !commit {
		s.logger.Debug("expression not committed", zap.String("expression", s.buffer.Expression()))
		return false, nil
	}
	s.buffer = next
	return s.Commit(ctx)
}

// Commit writes the display value to the selected card as is.
func (s *Session) Commit(ctx context.Context) (bool, error) {
	c, ok := s.store.Selected()
	if !ok {
		return false, ErrNoSelection
	}

	v, ok, err := s.store.Commit(ctx, c.ID, s.buffer.Input)
	if err != nil || !ok {
		return false, err
	}
	s.buffer = calc.NewBuffer(calc.Format(v))
	return true, nil
}

func (s *Session) Add(ctx context.Context, name, rawMax string) card.Card {
	c := s.store.Add(ctx, name, rawMax)
	if err := s.Select(c.ID); err != nil {
		s.logger.Error("failed to select new card", zap.Error(err))
	}
	return c
}

func (s *Session) AddPreset(ctx context.Context, rawMaxes map[string]string) []card.Card {
	added := s.store.AddPreset(ctx, rawMaxes)
	if len(added) > 0 {
		if err := s.Select(added[0].ID); err != nil {
			s.logger.Error("failed to select preset card", zap.Error(err))
		}
	}
	return added
}

// Edit updates a card. Editing the selected card reseeds its buffer with
// the re-clamped value; editing any other card selects it.
func (s *Session) Edit(ctx context.Context, id, name, rawMax string) (card.Card, error) {
	c, err := s.store.Edit(ctx, id, name, rawMax)
	if err != nil {
		return card.Card{}, err
	}
	if s.store.SelectedID() == id {
		s.reseed()
		return c, nil
	}
	return c, s.Select(id)
}

func (s *Session) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.syncSelection()
	return nil
}

func (s *Session) DeleteMany(ctx context.Context, ids []string) error {
	if err := s.store.DeleteMany(ctx, ids); err != nil {
		return err
	}
	s.syncSelection()
	return nil
}

// Reload rereads the card list from storage, keeping the pending
// expression when the selected card is still there.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		return err
	}
	s.syncSelection()
	return nil
}

func (s *Session) syncSelection() {
	if !s.Active() {
		s.buffer = calc.NewBuffer("0")
	}
}

func (s *Session) reseed() {
	c, ok := s.store.Selected()
	if !ok {
		s.buffer = calc.NewBuffer("0")
		return
	}
	s.buffer = calc.NewBuffer(calc.Format(c.Current))
}
