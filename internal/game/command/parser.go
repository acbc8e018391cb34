package command

import "strings"

// ParseResult is one tokenised input line.
type ParseResult struct {
	// Command is the first token, lowercased.
	Command string
	// Args are the remaining tokens with their case preserved.
	Args []string
}

// Parse splits line into tokens. Whitespace, commas and parentheses all
// separate tokens, so "attack 3 (4, 5)" and "attack 3 4 5" parse the same.
//
// Postcondition: Command is empty only when line has no tokens; Args is nil
// when there is nothing after the command.
func Parse(line string) ParseResult {
	tokens := strings.FieldsFunc(line, isSeparator)
	if len(tokens) == 0 {
		return ParseResult{}
	}
	res := ParseResult{Command: strings.ToLower(tokens[0])}
	if len(tokens) > 1 {
		res.Args = tokens[1:]
	}
	return res
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', ',', '(', ')':
		return true
	}
	return false
}
