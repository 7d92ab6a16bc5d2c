// Package input parses what the user types into the board prompt.
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyName is returned when the prompt has tags but no name.
var ErrEmptyName = errors.New("name is required")

// WishlistInput is a parsed "Name #type ~90m" prompt line.
type WishlistInput struct {
	Name    string
	Types   []string
	Minutes int // 0 means estimate
}

// ParseWishlistInput splits a prompt line into a name, "#type" tags and an
// optional "~length". Lengths accept Go durations ("1h30m") or bare minutes.
func ParseWishlistInput(s string) (WishlistInput, error) {
	var (
		in   WishlistInput
		name []string
	)
	for _, word := range strings.Fields(s) {
		switch {
		case strings.HasPrefix(word, "#") && len(word) > 1:
			in.Types = append(in.Types, strings.ToLower(word[1:]))
		case strings.HasPrefix(word, "~") && len(word) > 1:
			m, err := parseMinutes(word[1:])
			if err != nil {
				return WishlistInput{}, err
			}
			in.Minutes = m
		default:
			name = append(name, word)
		}
	}
	in.Name = strings.Join(name, " ")
	if in.Name == "" {
		return WishlistInput{}, ErrEmptyName
	}
	return in, nil
}

func parseMinutes(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("invalid length %q", s)
		}
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < time.Minute {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return int(d.Minutes()), nil
}

// TypeSuggestions returns known types matching the "#tag" being typed at the
// end of the input.
func TypeSuggestions(input string, known []string) []string {
	if input == "" || strings.HasSuffix(input, " ") {
		return nil
	}
	fields := strings.Fields(input)
	last := fields[len(fields)-1]
	if !strings.HasPrefix(last, "#") {
		return nil
	}

	prefix := strings.ToLower(last[1:])
	matches := make([]string, 0, len(known))
	for _, t := range known {
		if strings.HasPrefix(t, prefix) {
			matches = append(matches, t)
		}
	}
	return matches
}

// TypeAutocomplete completes the trailing "#tag" with the first match.
func TypeAutocomplete(input string, known []string) (string, bool) {
	matches := TypeSuggestions(input, known)
	if len(matches) == 0 {
		return "", false
	}
	i := strings.LastIndex(input, "#")
	return input[:i] + "#" + matches[0] + " ", true
}
