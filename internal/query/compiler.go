package query

import (
	"fmt"

	nsierrors "github.com/standardbeagle/nsi/internal/errors"

	"github.com/standardbeagle/nsi/internal/analysis"
)

// Compiler lexes, validates and rewrites boolean queries, then converts
// them to postfix form for the evaluator. Operand tokens run through the
// analyzer with the same options used at index time; the uppercase operator
// keywords are preserved verbatim.
type Compiler struct {
	analyzer *analysis.Analyzer
}

// NewCompiler creates a compiler over the given analyzer.
func NewCompiler(analyzer *analysis.Analyzer) *Compiler {
	return &Compiler{analyzer: analyzer}
}

// Compile turns an infix boolean query into a postfix token sequence.
// Validation failures return an InputError; the caller reports the
// diagnostic and evaluates to the empty set.
func (c *Compiler) Compile(queryText string) ([]Token, error) {
	tokens, err := Lex(queryText)
	if err != nil {
		return nil, err
	}
	if err := validate(queryText, tokens); err != nil {
		return nil, err
	}
	c.rewrite(tokens)
	return toPostfix(tokens), nil
}

// rewrite analyzes every operand token in place. A word that analyzes to ""
// (stop word) stays in the query as an always-empty operand; stop words
// inside phrases vanish, shortening the phrase.
func (c *Compiler) rewrite(tokens []Token) {
	for i := range tokens {
		tok := &tokens[i]
		switch tok.Kind {
		case TokenWord:
			tok.Text = c.analyzer.AnalyzeQueryToken(tok.Text)
		case TokenPhrase:
			terms := make([]string, 0, len(tok.Terms))
			for _, w := range tok.Terms {
				if t := c.analyzer.AnalyzeToken(w); t != "" {
					terms = append(terms, t)
				}
			}
			tok.Terms = terms
		case TokenProximity:
			for j, w := range tok.Terms {
				tok.Terms[j] = c.analyzer.AnalyzeToken(w)
			}
		}
	}
}

// validate enforces the query grammar before any rewriting happens.
func validate(queryText string, tokens []Token) error {
	reject := func(reason string) error {
		return nsierrors.NewInputError("validate query", queryText, fmt.Errorf("%s", reason))
	}

	if len(tokens) == 0 {
		return reject("empty query")
	}

	depth := 0
	var prev *Token
	for i := range tokens {
		tok := &tokens[i]
		switch tok.Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth < 0 {
				return reject("parenthesis closed before opening")
			}
		case TokenOperator:
			if tok.Text == "NOT" {
				// NOT is unary: legal at the start, after an operator or
				// after an opening parenthesis.
				if prev != nil && !prev.IsOperator() && prev.Kind != TokenLParen {
					return reject("invalid NOT position")
				}
			} else {
				// Binary operators need an operand on the left.
				if prev == nil || prev.IsOperator() || prev.Kind == TokenLParen {
					return reject("invalid operator position")
				}
			}
		default:
			if prev != nil && prev.Kind == TokenRParen {
				return reject("operand directly follows closing parenthesis")
			}
		}
		prev = tok
	}
	if depth != 0 {
		return reject("unbalanced parentheses")
	}
	if last := tokens[len(tokens)-1]; last.IsOperator() {
		return reject("query ends with an operator")
	}
	return nil
}

// Shunting-Yard precedence: NOT binds tighter than AND/OR, parentheses
// group.
func precedence(tok Token) int {
	switch {
	case tok.Kind == TokenOperator && tok.Text == "NOT":
		return 3
	case tok.Kind == TokenOperator:
		return 2
	case tok.Kind == TokenLParen, tok.Kind == TokenRParen:
		return 1
	}
	return -1
}

// rightAssociative reports operator associativity; NOT is the only
// right-associative (unary) operator.
func rightAssociative(tok Token) bool {
	return tok.Kind == TokenOperator && tok.Text == "NOT"
}

// toPostfix runs Shunting-Yard over a validated token sequence.
func toPostfix(tokens []Token) []Token {
	var stack []Token
	postfix := make([]Token, 0, len(tokens))

	for _, tok := range tokens {
		switch {
		case tok.IsOperator():
			for len(stack) > 0 && stack[len(stack)-1].IsOperator() {
				top := stack[len(stack)-1]
				if (!rightAssociative(tok) && precedence(tok) <= precedence(top)) ||
					(rightAssociative(tok) && precedence(tok) < precedence(top)) {
					postfix = append(postfix, top)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, tok)
		case tok.Kind == TokenLParen:
			stack = append(stack, tok)
		case tok.Kind == TokenRParen:
			for len(stack) > 0 && stack[len(stack)-1].Kind != TokenLParen {
				postfix = append(postfix, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			postfix = append(postfix, tok)
		}
	}
	for len(stack) > 0 {
		postfix = append(postfix, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return postfix
}
