package config

import (
	"errors"
	"strings"
	"unicode"
)

var ErrUnterminatedQuote = errors.New("unterminated double quote")

// ParseExtraArgs splits a user-supplied argument string on whitespace.
// Double quotes group text containing spaces and are removed, so
// `--postprocessor-args "ffmpeg:-threads 2"` yields two arguments.
// There is no escaping and the result is never passed to a shell.
func ParseExtraArgs(raw string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range raw {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
