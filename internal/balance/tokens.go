package balance

import (
	"regexp"
	"sort"
)

var (
	// blockCommentPattern matches {/* ... */} within a single line.
	blockCommentPattern = regexp.MustCompile(`\{/\*.*?\*/\}`)

	// lineCommentPattern matches from // to the end of the line.
	lineCommentPattern = regexp.MustCompile(`//.*`)

	openingPattern = regexp.MustCompile(`<div`)
	closingPattern = regexp.MustCompile(`</div`)
)

// TokenKind distinguishes opening and closing tokens.
type TokenKind int

const (
	// Opening is a "<div" token.
	Opening TokenKind = iota
	// Closing is a "</div" token.
	Closing
)

// String returns the literal text of the token kind.
func (k TokenKind) String() string {
	if k == Closing {
		return "</div"
	}
	return "<div"
}

// Token is one div token found in a comment-stripped line.
type Token struct {
	Kind TokenKind
	// Offset is the byte offset of the token within the stripped line.
	Offset int
}

// StripComments removes single-line {/* ... */} comments and then
// everything from // to the end of the line.
func StripComments(line string) string {
	line = blockCommentPattern.ReplaceAllString(line, "")
	return lineCommentPattern.ReplaceAllString(line, "")
}

// CountOpenings counts "<div" tokens in line that are not followed by an
// ASCII letter or digit. Comments are not stripped.
func CountOpenings(line string) int {
	return len(matchTokens(line, openingPattern))
}

// CountClosings counts "</div" tokens in line that are not followed by an
// ASCII letter or digit. Comments are not stripped.
func CountClosings(line string) int {
	return len(matchTokens(line, closingPattern))
}

// Tokens returns the opening and closing tokens of line in order of
// appearance. Comments are not stripped.
func Tokens(line string) []Token {
	var tokens []Token
	for _, offset := range matchTokens(line, openingPattern) {
		tokens = append(tokens, Token{Kind: Opening, Offset: offset})
	}
	for _, offset := range matchTokens(line, closingPattern) {
		tokens = append(tokens, Token{Kind: Closing, Offset: offset})
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Offset < tokens[j].Offset
	})
	return tokens
}

// matchTokens returns the offsets of every match of pattern that sits on a
// tag boundary.
func matchTokens(line string, pattern *regexp.Regexp) []int {
	var offsets []int
	for _, loc := range pattern.FindAllStringIndex(line, -1) {
		if loc[1] < len(line) && isASCIIAlnum(line[loc[1]]) {
			continue
		}
		offsets = append(offsets, loc[0])
	}
	return offsets
}

func isASCIIAlnum(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
