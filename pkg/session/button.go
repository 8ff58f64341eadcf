package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/turbekoff/staminabot/pkg/calc"
)

var ErrUnknownButton = errors.New("unknown button")

type Action int

const (
	ActionDigit Action = iota
	ActionOperator
	ActionOpenParen
	ActionCloseParen
	ActionClear
	ActionUndo
	ActionPercent
	ActionEquals
)

type Button struct {
	Action Action
	Digit  string
	Op     calc.Operator
}

func Digit(d string) Button            { return Button{Action: ActionDigit, Digit: d} }
func Operator(op calc.Operator) Button { return Button{Action: ActionOperator, Op: op} }
func Do(action Action) Button          { return Button{Action: action} }

// ParseButton reads one word of the keypad vocabulary: 0-9 . 00 + - * / ( )
// clear undo percent equals, plus the aliases AC, C, %, = and the × ÷ glyphs.
func ParseButton(s string) (Button, error) {
	if calc.IsDigitKey(s) {
		return Digit(s), nil
	}
	if op, ok := calc.ParseOperator(s); ok {
		return Operator(op), nil
	}

	switch strings.ToLower(s) {
	case "(":
		return Do(ActionOpenParen), nil
	case ")":
		return Do(ActionCloseParen), nil
	case "clear", "ac", "c":
		return Do(ActionClear), nil
	case "undo", "⌫":
		return Do(ActionUndo), nil
	case "percent", "%":
		return Do(ActionPercent), nil
	case "equals", "=":
		return Do(ActionEquals), nil
	}
	return Button{}, fmt.Errorf("%w: %q", ErrUnknownButton, s)
}

// String is the canonical vocabulary word; ParseButton(b.String()) == b.
func (b Button) String() string {
	switch b.Action {
	case ActionDigit:
		return b.Digit
	case ActionOperator:
		return b.Op.String()
	case ActionOpenParen:
		return "("
	case ActionCloseParen:
		return ")"
	case ActionClear:
		return "clear"
	case ActionUndo:
		return "undo"
	case ActionPercent:
		return "percent"
	case ActionEquals:
		return "equals"
	}
	return ""
}

// KeyButton maps a keyboard key name to a keypad button. Key names follow
// bubbletea's KeyMsg.String(): single characters plus "enter",
// "backspace" and "esc".
func KeyButton(key string) (Button, bool) {
	switch key {
	case "enter", "=":
		return Do(ActionEquals), true
	case "backspace":
		return Do(ActionUndo), true
	case "esc", "c", "C":
		return Do(ActionClear), true
	case "%":
		return Do(ActionPercent), true
	case "(":
		return Do(ActionOpenParen), true
	case ")":
		return Do(ActionCloseParen), true
	case "+", "-", "*", "/":
		op, _ := calc.ParseOperator(key)
		return Operator(op), true
	}
	if len(key) == 1 && (key[0] >= '0' && key[0] <= '9' || key[0] == '.') {
		return Digit(key), true
	}
	return Button{}, false
}
