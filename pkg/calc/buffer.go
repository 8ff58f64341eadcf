package calc

import (
	"math"
	"slices"
	"strings"
)

// Buffer is the calculator state: the committed tokens of the expression
// and the operand being typed. Input is "" when no operand is pending and
// "-" for a unary minus that has no digits yet.
//
// Every transition returns a new Buffer and leaves the receiver untouched.
type Buffer struct {
	Tokens []Token
	Input  string
}

func NewBuffer(input string) Buffer {
	return Buffer{Input: input}
}

func IsDigitKey(d string) bool {
	if d == "." || d == "00" {
		return true
	}
	return len(d) == 1 && d[0] >= '0' && d[0] <= '9'
}

func (b Buffer) Digit(d string) Buffer {
	if !IsDigitKey(d) {
		return b
	}
	in := b.Input
	if d == "." && strings.Contains(in, ".") {
		return b
	}

	switch in {
	case "":
		switch d {
		case ".":
			in = "0."
		case "00":
			in = "0"
		default:
			in = d
		}
	case "-":
		switch d {
		case ".":
			in = "-0."
		case "00":
			in = "-0"
		default:
			in = "-" + d
		}
	case "0", "-0":
		sign := strings.TrimSuffix(in, "0")
		switch d {
		case ".":
			in += "."
		case "00":
		default:
			in = sign + d
		}
	default:
		in += d
	}

	b.Input = in
	return b
}

func (b Buffer) Operator(op Operator) Buffer {
	tokens, input := b.flush()
	if b.Input == "-" {
		input = ""
	}

	if len(tokens) == 0 {
		if op == Subtract {
			input = "-"
		}
		return Buffer{Tokens: tokens, Input: input}
	}

	last := tokens[len(tokens)-1]
	switch {
	case last.IsOperator():
		tokens[len(tokens)-1] = Op(op)
	case last.IsOpenParen():
	default:
		tokens = append(tokens, Op(op))
	}
	return Buffer{Tokens: tokens, Input: input}
}

func (b Buffer) OpenParen() Buffer {
	tokens := slices.Clone(b.Tokens)
	input := b.Input

	switch input {
	case "", "-":
	case "0", "-0", "0.":
		input = ""
	default:
		tokens = append(tokens, Number(input), Op(Multiply))
		input = ""
	}

	if last, ok := lastToken(tokens); ok && !last.IsOperator() && !last.IsOpenParen() {
		tokens = append(tokens, Op(Multiply))
	}
	tokens = append(tokens, OpenParen())
	return Buffer{Tokens: tokens, Input: input}
}

func (b Buffer) CloseParen() Buffer {
	open := 0
	for _, t := range b.Tokens {
		switch t.Kind {
		case KindOpenParen:
			open++
		case KindCloseParen:
			open--
		}
	}

	tokens, input := b.flush()
	if open <= 0 {
		return Buffer{Tokens: tokens, Input: input}
	}

	last, ok := lastToken(tokens)
	if !ok || last.IsOperator() || last.IsOpenParen() {
		return Buffer{Tokens: tokens, Input: input}
	}
	return Buffer{Tokens: append(tokens, CloseParen()), Input: input}
}

func (b Buffer) Undo() Buffer {
	if b.Input != "" {
		if len(b.Input) <= 1 {
			b.Input = "0"
		} else {
			b.Input = b.Input[:len(b.Input)-1]
		}
		return b
	}

	if len(b.Tokens) == 0 {
		return b
	}
	removed := b.Tokens[len(b.Tokens)-1]
	b.Tokens = slices.Clone(b.Tokens[:len(b.Tokens)-1])
	if removed.IsNumber() {
		b.Input = removed.Text
	}
	return b
}

func (b Buffer) Percent() Buffer {
	v, ok := ParseNumber(b.Input)
	if !ok {
		return b
	}
	b.Input = formatPlain(v / 100)
	return b
}

// Resolve reduces the buffer with eval. commit is false when the result
// must not reach the card: a degenerate expression or a non-finite value.
// In that case the receiver is returned unchanged.
//
// A buffer holding no expression at all resolves to itself with commit set,
// so the current display is written back as is.
func (b Buffer) Resolve(eval Evaluator) (next Buffer, commit bool) {
	if eval == nil {
		eval = Lenient
	}

	tokens, _ := b.flush()
	if len(tokens) == 0 {
		return b, true
	}
	if tokens[len(tokens)-1].IsOperator() {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return b, false
	}

	v, ok := eval(tokens)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return b, false
	}
	return NewBuffer(Format(v)), true
}

// Display renders the buffer for the keypad screen.
func (b Buffer) Display() string {
	parts := make([]string, 0, len(b.Tokens)+1)
	for _, t := range b.Tokens {
		if t.IsOperator() {
			parts = append(parts, t.Op.Symbol())
			continue
		}
		parts = append(parts, t.String())
	}
	if b.Input != "" {
		parts = append(parts, b.Input)
	}

	s := strings.TrimSpace(strings.Join(parts, " "))
	if s == "" {
		return "0"
	}
	return s
}

// Expression is the ASCII form of the pending expression.
func (b Buffer) Expression() string {
	s := Join(b.Tokens)
	if b.Input == "" {
		return s
	}
	if s == "" {
		return b.Input
	}
	return s + " " + b.Input
}

// flush returns a copy of the tokens with a real pending operand appended,
// and the input that remains afterwards.
func (b Buffer) flush() ([]Token, string) {
	tokens := slices.Clone(b.Tokens)
	if b.Input == "" || b.Input == "-" {
		return tokens, b.Input
	}
	return append(tokens, Number(b.Input)), ""
}

func lastToken(tokens []Token) (Token, bool) {
	if len(tokens) == 0 {
		return Token{}, false
	}
	return tokens[len(tokens)-1], true
}
