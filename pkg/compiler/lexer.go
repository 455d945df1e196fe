package compiler

import (
	"strings"
	"unicode"
)

// delimiters split a word into separate fragments outside string mode.
const delimiters = `{}()$"!=+`

// codeFragment is a pre-token unit: a whitespace/delimiter separated piece of
// source text and the line it starts on.
type codeFragment struct {
	text string
	line int
}

// tokenRule recognises the full text of one fragment.
type tokenRule struct {
	tt    TokenType
	match func(string) bool
}

func exactly(s string) func(string) bool {
	return func(frag string) bool { return frag == s }
}

func singleRune(pred func(rune) bool) func(string) bool {
	return func(frag string) bool {
		r := []rune(frag)
		return len(r) == 1 && pred(r[0])
	}
}

// tokenRules is tried in order; the first rule that matches wins.
var tokenRules = []tokenRule{
	{LPAREN, exactly("(")},
	{RPAREN, exactly(")")},
	{LBRACE, exactly("{")},
	{RBRACE, exactly("}")},
	{QUOTE, exactly(`"`)},
	{PRINT, exactly("print")},
	{EOF, exactly("$")},
	{WHILE, exactly("while")},
	{IF, exactly("if")},
	{DIGIT, singleRune(func(r rune) bool { return r >= '0' && r <= '9' })},
	{ID, singleRune(func(r rune) bool { return r >= 'a' && r <= 'z' })},
	{PLUS, exactly("+")},
	{INT, exactly("int")},
	{STRING, exactly("string")},
	{BOOLEAN, exactly("boolean")},
	{SINGLE_EQUALS, exactly("=")},
	{EXCLAMATION, exactly("!")},
	{FALSE, exactly("false")},
	{TRUE, exactly("true")},
	{WHITESPACE, singleRune(unicode.IsSpace)},
}

// classify returns the token for frag, or NO_MATCH.
func classify(frag codeFragment) Token {
	for _, rule := range tokenRules {
		if rule.match(frag.text) {
			return Token{Type: rule.tt, Lexeme: frag.text, Line: frag.line}
		}
	}
	return Token{Type: NO_MATCH, Lexeme: frag.text, Line: frag.line}
}

// Lexer holds all mutable state for a single tokenization pass over src.
type Lexer struct {
	src   []rune
	log   *Log
	lines []string
}

func NewLexer(src string, log *Log) *Lexer {
	return &Lexer{src: []rune(src), log: log, lines: strings.Split(src, "\n")}
}

func (l *Lexer) fail(kind ErrorKind, line int, format string, args ...any) error {
	err := newError(CategoryLexer, kind, line, format, args...)
	if line >= 1 && line <= len(l.lines) {
		err.Snippet = strings.TrimSpace(l.lines[line-1])
	}
	l.log.Error(CategoryLexer, "%s", err.Msg)
	l.log.summary(CategoryLexer)
	return err
}

// fragments splits the source on whitespace and delimiters. Inside a
// double-quoted string every rune, whitespace included, is its own fragment.
func (l *Lexer) fragments() []codeFragment {
	var (
		frags      []codeFragment
		word       []rune
		wordLine   int
		line       = 1
		stringMode = false
	)

	flush := func() {
		if len(word) > 0 {
			frags = append(frags, codeFragment{text: string(word), line: wordLine})
			word = nil
		}
	}

	for _, r := range l.src {
		if stringMode {
			frags = append(frags, codeFragment{text: string(r), line: line})
			if r == '"' {
				stringMode = false
			}
			if r == '\n' {
				line++
			}
			continue
		}

		switch {
		case unicode.IsSpace(r):
			flush()
			if r == '\n' {
				line++
			}
		case strings.ContainsRune(delimiters, r):
			flush()
			frags = append(frags, codeFragment{text: string(r), line: line})
			if r == '"' {
				stringMode = true
			}
		default:
			if len(word) == 0 {
				wordLine = line
			}
			word = append(word, r)
		}
	}
	flush()

	return frags
}

// Tokenize converts the source into a token stream ending in EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	l.log.Info(CategoryLexer, "Performing Lexical Analysis")

	frags := l.fragments()
	if len(frags) == 0 {
		return nil, l.fail(ErrEmptyInput, 0, "Input was only whitespace, so no tokens were found.")
	}

	var (
		tokens     []Token
		stringMode bool
		eofFound   bool
		i          int
	)

	for i = 0; i < len(frags) && !eofFound; i++ {
		frag := frags[i]
		tok := classify(frag)

		if stringMode {
			switch tok.Type {
			case QUOTE:
				stringMode = false
			case ID:
				tok.Type = CHAR
			case DIGIT:
				return tokens, l.fail(ErrDigitInString, frag.line,
					"Digit '%s' found inside a string on line %d; strings may only contain lowercase letters and spaces.", frag.text, frag.line)
			case WHITESPACE:
				if frag.text == "\n" {
					return tokens, l.fail(ErrNewlineInString, frag.line,
						"Newline found inside a string on line %d.", frag.line)
				}
			default:
				return tokens, l.fail(ErrIllegalStringChar, frag.line,
					"Illegal character '%s' inside a string on line %d.", frag.text, frag.line)
			}
			l.log.Trace(CategoryLexer, "Found token %s '%s' on line %d", tok.Type, tok.Lexeme, tok.Line)
			tokens = append(tokens, tok)
			continue
		}

		switch tok.Type {
		case NO_MATCH:
			return tokens, l.fail(ErrMalformedFragment, frag.line,
				"Unrecognized lexeme '%s' on line %d.", frag.text, frag.line)

		case QUOTE:
			stringMode = true

		case EOF:
			eofFound = true

		case SINGLE_EQUALS:
			if i+1 < len(frags) && frags[i+1].text == "=" {
				tok = Token{Type: DOUBLE_EQUALS, Lexeme: "==", Line: frag.line}
				i++
			}

		case EXCLAMATION:
			if i+1 >= len(frags) || frags[i+1].text != "=" {
				return tokens, l.fail(ErrDanglingExclamation, frag.line,
					"'!' on line %d must be followed by '='.", frag.line)
			}
			tok = Token{Type: NOT_EQUALS, Lexeme: "!=", Line: frag.line}
			i++
		}

		l.log.Trace(CategoryLexer, "Found token %s '%s' on line %d", tok.Type, tok.Lexeme, tok.Line)
		tokens = append(tokens, tok)
	}

	if eofFound && i < len(frags) {
		eofLine := tokens[len(tokens)-1].Line
		return tokens, l.fail(ErrInputAfterEOF, frags[i].line,
			"Input found after EOF character, which was on line %d.", eofLine)
	}

	if !eofFound {
		line := tokens[len(tokens)-1].Line + 1
		l.log.Warn(CategoryLexer, "EOF character was not found; inserting '$' on line %d.", line)
		tokens = append(tokens, Token{Type: EOF, Lexeme: "$", Line: line})
	}

	l.log.summary(CategoryLexer)
	return tokens, nil
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a non-nil error on the first malformed fragment.
func Lex(src string, log *Log) ([]Token, error) {
	return NewLexer(src, log).Tokenize()
}
