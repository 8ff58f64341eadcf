package calc

// Evaluator reduces a token sequence to a value. ok is false when there is
// nothing to reduce or the expression left no result behind.
type Evaluator func(tokens []Token) (value float64, ok bool)

// Lenient is a shunting-yard evaluator that never fails: a stray ")" is
// dropped, an unclosed "(" is ignored, a missing operand counts as 0 and
// division by zero yields 0.
func Lenient(tokens []Token) (float64, bool) {
	if len(tokens) == 0 {
		return 0, false
	}

	var (
		output    []float64
		operators []Token
	)

	reduce := func() {
		op := operators[len(operators)-1]
		operators = operators[:len(operators)-1]

		right, rok := pop(&output)
		left, lok := pop(&output)
		if !rok || !lok {
			output = append(output, 0)
			return
		}
		output = append(output, apply(left, right, op.Op))
	}

	for _, t := range tokens {
		switch t.Kind {
		case KindNumber:
			v, ok := ParseNumber(t.Text)
			if !ok {
				continue
			}
			output = append(output, v)
		case KindOpenParen:
			operators = append(operators, t)
		case KindCloseParen:
			for len(operators) > 0 && !operators[len(operators)-1].IsOpenParen() {
				reduce()
			}
			if len(operators) > 0 {
				operators = operators[:len(operators)-1]
			}
		case KindOperator:
			for len(operators) > 0 {
				top := operators[len(operators)-1]
				if top.IsOpenParen() || top.Op.precedence() < t.Op.precedence() {
					break
				}
				reduce()
			}
			operators = append(operators, t)
		}
	}

	for len(operators) > 0 {
		if operators[len(operators)-1].IsOpenParen() {
			operators = operators[:len(operators)-1]
			continue
		}
		reduce()
	}

	return pop(&output)
}

func pop(stack *[]float64) (float64, bool) {
	s := *stack
	if len(s) == 0 {
		return 0, false
	}
	v := s[len(s)-1]
	*stack = s[:len(s)-1]
	return v, true
}

func apply(left, right float64, op Operator) float64 {
	switch op {
	case Add:
		return left + right
	case Subtract:
		return left - right
	case Multiply:
		return left * right
	case Divide:
		if right == 0 {
			return 0
		}
		return left / right
	}
	return right
}
