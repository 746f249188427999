package locator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type token struct {
	category tokenCategory
	string   string
	index    int
}

type tokenCategory int

const (
	tokenEOF tokenCategory = iota
	tokenSpace
	tokenType
	tokenID
	tokenPseudoClass
	tokenPseudoFunction
	tokenFunctionArguments
	tokenString
	tokenValue
	tokenMatcher
	tokenCombinator
	tokenBracketOpen
	tokenBracketClose
	tokenComma
)

const eof = -1

type stateFn func(*lexer) stateFn

type lexer struct {
	input  string
	index  int
	start  int
	width  int
	tokens []token
	error  *syntaxError
}

type syntaxError struct {
	index  int
	reason string
}

// lex tokenizes the compound selector chain of a css segment body.
func lex(input string) ([]token, *syntaxError) {
	l := &lexer{input: input}
	for state := lexSpace; state != nil; state = state(l) {
	}
	return l.tokens, l.error
}

func (l *lexer) next() rune {
	if l.index >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.index:])
	l.width = w
	l.index += l.width
	return r
}

func (l *lexer) peek() rune {
	if l.index >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.index:])
	return r
}

func (l *lexer) backup() {
	l.index -= l.width
}

func (l *lexer) emit(c tokenCategory) {
	l.tokens = append(l.tokens, token{c, l.input[l.start:l.index], l.start})
	l.start = l.index
}

func (l *lexer) ignore() {
	l.start = l.index
}

func (l *lexer) acceptRun(f func(rune) bool) {
	for f(l.next()) {
	}
	l.backup()
}

func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.error = &syntaxError{l.index, fmt.Sprintf(format, args...)}
	return nil
}

func lexSpace(l *lexer) stateFn {
	if isWhitespace(l.peek()) {
		l.acceptRun(isWhitespace)
		l.emit(tokenSpace)
	}
	switch r := l.next(); {
	case r == '>':
		l.emit(tokenCombinator)
		return lexSpace
	case r == '[':
		l.emit(tokenBracketOpen)
		return lexPredicate
	case r == '#':
		l.ignore()
		return lexID
	case r == ':':
		l.ignore()
		return lexPseudo
	case isTypeStart(r):
		l.backup()
		return lexType
	case r == eof:
		l.emit(tokenEOF)
		return nil
	default:
		l.backup()
		return l.errorf("unexpected %q", string(r))
	}
}

// isNameStart checks whether rune r is a valid character as the start of a name
func isNameStart(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' || r == '$' || r > 127
}

// isNameChar checks whether rune r is a valid character as a part of a name
func isNameChar(r rune) bool {
	return isNameStart(r) || '0' <= r && r <= '9' || r == '-'
}

func isTypeStart(r rune) bool  { return isNameStart(r) || r == '*' }
func isTypeChar(r rune) bool   { return isNameChar(r) || r == '*' || r == '.' }
func isIDChar(r rune) bool     { return isNameChar(r) || r == '.' }
func isDigit(r rune) bool      { return '0' <= r && r <= '9' }
func isWhitespace(r rune) bool { return strings.ContainsRune(" \t\f\r\n", r) }
func isQuote(r rune) bool      { return r == '\'' || r == '"' }

func acceptString(l *lexer) error {
	quote := l.next()
	if !isQuote(quote) {
		return fmt.Errorf("invalid quoting char for string: %s", string(quote))
	}
	for r := l.next(); r != quote; r = l.next() {
		switch {
		case r == eof:
			return fmt.Errorf("unterminated quoted string")
		case r == '\\':
			l.next()
		}
	}
	return nil
}

func lexType(l *lexer) stateFn {
	l.acceptRun(isTypeChar)
	l.emit(tokenType)
	return lexSpace
}

func lexID(l *lexer) stateFn {
	if isQuote(l.peek()) {
		if err := acceptString(l); err != nil {
			return l.errorf("%s", err)
		}
		l.emit(tokenString)
		return lexSpace
	}
	if !isIDChar(l.peek()) {
		return l.errorf("invalid starting char for id")
	}
	l.acceptRun(isIDChar)
	l.emit(tokenID)
	return lexSpace
}

func lexPseudo(l *lexer) stateFn {
	if !isNameStart(l.peek()) {
		return l.errorf("invalid starting char for pseudo class")
	}
	l.acceptRun(isNameChar)
	if l.peek() == '(' {
		l.emit(tokenPseudoFunction)
		return lexFunctionArguments
	}
	l.emit(tokenPseudoClass)
	return lexSpace
}

func lexFunctionArguments(l *lexer) stateFn {
	if l.next() != '(' {
		return l.errorf("invalid start of function arguments")
	}
	for r, lvl := l.next(), 1; lvl != 0; r = l.next() {
		switch r {
		case eof:
			return l.errorf("unterminated function arguments")
		case '(':
			lvl++
		case ')':
			lvl--
		case '"', '\'':
			l.backup()
			if err := acceptString(l); err != nil {
				return l.errorf("%s", err)
			}
		}
	}
	l.emit(tokenFunctionArguments)
	return lexSpace
}

// lexPredicate lexes the comma separated `name op value` list of a bracket.
func lexPredicate(l *lexer) stateFn {
	l.acceptRun(isWhitespace)
	l.ignore()
	if !isNameStart(l.peek()) {
		return l.errorf("expected predicate name")
	}
	l.acceptRun(isNameChar)
	l.emit(tokenValue)
	l.acceptRun(isWhitespace)
	l.ignore()
	switch r := l.next(); {
	case r == ']':
		l.emit(tokenBracketClose)
		return lexSpace
	case r == ',':
		l.emit(tokenComma)
		return lexPredicate
	case r == '=':
		l.emit(tokenMatcher)
	case strings.ContainsRune("*^$~", r) && l.peek() == '=':
		l.next()
		l.emit(tokenMatcher)
	default:
		l.backup()
		return l.errorf("expected operator, ',' or ']'")
	}
	l.acceptRun(isWhitespace)
	l.ignore()
	if isQuote(l.peek()) {
		if err := acceptString(l); err != nil {
			return l.errorf("%s", err)
		}
		l.emit(tokenString)
	} else {
		l.acceptRun(func(r rune) bool { return r != ',' && r != ']' && r != '=' && r != eof && !isQuote(r) })
		for l.index > l.start && isWhitespace(rune(l.input[l.index-1])) {
			l.index--
		}
		if l.index == l.start {
			return l.errorf("expected value")
		}
		l.emit(tokenValue)
		l.acceptRun(isWhitespace)
		l.ignore()
	}
	l.acceptRun(isWhitespace)
	l.ignore()
	switch r := l.next(); r {
	case ']':
		l.emit(tokenBracketClose)
		return lexSpace
	case ',':
		l.emit(tokenComma)
		return lexPredicate
	default:
		l.backup()
		return l.errorf("expected ',' or ']'")
	}
}
