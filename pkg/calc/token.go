package calc

import "strings"

type Kind int

const (
	KindNumber Kind = iota
	KindOperator
	KindOpenParen
	KindCloseParen
)

type Operator byte

const (
	Add      Operator = '+'
	Subtract Operator = '-'
	Multiply Operator = '*'
	Divide   Operator = '/'
)

// ParseOperator accepts the ASCII operators and the keypad glyphs × and ÷.
func ParseOperator(s string) (Operator, bool) {
	switch s {
	case "+":
		return Add, true
	case "-", "−":
		return Subtract, true
	case "*", "×":
		return Multiply, true
	case "/", "÷":
		return Divide, true
	}
	return 0, false
}

func (o Operator) precedence() int {
	switch o {
	case Multiply, Divide:
		return 2
	case Add, Subtract:
		return 1
	}
	return 0
}

func (o Operator) String() string {
	return string(o)
}

// Symbol is the display glyph of the operator.
func (o Operator) Symbol() string {
	if o == Multiply {
		return "×"
	}
	return string(o)
}

type Token struct {
	Kind Kind
	Text string
	Op   Operator
}

func Number(text string) Token { return Token{Kind: KindNumber, Text: text} }
func Op(op Operator) Token     { return Token{Kind: KindOperator, Op: op} }
func OpenParen() Token         { return Token{Kind: KindOpenParen} }
func CloseParen() Token        { return Token{Kind: KindCloseParen} }

func (t Token) IsNumber() bool     { return t.Kind == KindNumber }
func (t Token) IsOperator() bool   { return t.Kind == KindOperator }
func (t Token) IsOpenParen() bool  { return t.Kind == KindOpenParen }
func (t Token) IsCloseParen() bool { return t.Kind == KindCloseParen }

func (t Token) String() string {
	switch t.Kind {
	case KindNumber:
		return t.Text
	case KindOperator:
		return t.Op.String()
	case KindOpenParen:
		return "("
	case KindCloseParen:
		return ")"
	}
	return ""
}

// Tokenize splits a space separated expression such as "( 2 + 3 ) * 4".
// Words that are neither operators nor parentheses become number tokens.
func Tokenize(expr string) []Token {
	fields := strings.Fields(expr)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		switch {
		case f == "(":
			tokens = append(tokens, OpenParen())
		case f == ")":
			tokens = append(tokens, CloseParen())
		default:
			if op, ok := ParseOperator(f); ok {
				tokens = append(tokens, Op(op))
				continue
			}
			tokens = append(tokens, Number(f))
		}
	}
	return tokens
}

func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
