// Package moderation masks forbidden words in text messages before they are stored.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator is safe for concurrent use once built: the automaton is read-only.
type Moderator struct {
	machine *goahocorasick.Machine
	mask    rune
}

// folded is a message reduced to its comparable letters. positions[i] is the
// index, in the original runes, of letters[i].
type folded struct {
	letters   []rune
	positions []int
}

// NewModerator builds the automaton over the folded form of words.
// Words folding to nothing, like punctuation only, are ignored.
func NewModerator(words []string, mask rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if f := fold([]rune(word)); len(f.letters) > 0 {
			patterns = append(patterns, f.letters)
		}
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{machine: machine, mask: mask}, nil
}

// Censor masks every forbidden word of content and returns how many were found.
// A word spread over noise ("s.n-a k e") is masked from its first to its last letter.
func (m *Moderator) Censor(content string) (string, int) {
	runes := []rune(content)
	f := fold(runes)
	if len(f.letters) == 0 {
		return content, 0
	}

	hits := m.machine.MultiPatternSearch(f.letters, false)
	masked := 0
	for _, hit := range hits {
		first, last := hit.Pos, hit.Pos+len(hit.Word)-1
		if first < 0 || last >= len(f.positions) {
			continue
		}
		for i := f.positions[first]; i <= f.positions[last]; i++ {
			runes[i] = m.mask
		}
		masked++
	}
	if masked == 0 {
		return content, 0
	}
	return string(runes), masked
}

func fold(runes []rune) folded {
	f := folded{letters: make([]rune, 0, len(runes)), positions: make([]int, 0, len(runes))}
	for i, r := range runes {
		letter, ok := letterOf(r)
		if !ok {
			continue
		}
		f.letters = append(f.letters, letter)
		f.positions = append(f.positions, i)
	}
	return f
}

// letterOf lowercases r and reads leet speak digits and signs as letters.
// Spaces, punctuation and symbols are not comparable.
func letterOf(r rune) (rune, bool) {
	switch r {
	case '4', '@':
		return 'a', true
	case '3', '€':
		return 'e', true
	case '1', '!', '|':
		return 'i', true
	case '0':
		return 'o', true
	case '5', '$':
		return 's', true
	}
	if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
		return 0, false
	}
	return unicode.ToLower(r), true
}
