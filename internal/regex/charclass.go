package regex

import "sort"

// printableSet is the ASCII-printable alphabet character classes are
// expanded against, and the domain `^` negation is applied within.
var printableSet = buildPrintableSet()

func buildPrintableSet() []rune {
	set := make([]rune, 0, 95)
	for r := rune(0x20); r <= 0x7E; r++ {
		set = append(set, r)
	}
	return set
}

func wordChars() []rune {
	var rs []rune
	for r := 'a'; r <= 'z'; r++ {
		rs = append(rs, r)
	}
	for r := 'A'; r <= 'Z'; r++ {
		rs = append(rs, r)
	}
	for r := '0'; r <= '9'; r++ {
		rs = append(rs, r)
	}
	rs = append(rs, '_')
	return rs
}

func digitChars() []rune {
	var rs []rune
	for r := '0'; r <= '9'; r++ {
		rs = append(rs, r)
	}
	return rs
}

// whitespaceChars is the natural definition of \s, used as-is for the
// positive form (it is not restricted to the printable domain).
func whitespaceChars() []rune {
	return []rune{' ', '\t', '\n', '\r', '\f', '\v'}
}

func toRuneSet(rs []rune) map[rune]bool {
	m := make(map[rune]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// negateAgainstPrintable returns printableSet minus the given set, per
// step 2: negation is always computed against the printable
// set, regardless of what the positive class itself ranges over.
func negateAgainstPrintable(positive []rune) []rune {
	exclude := toRuneSet(positive)
	var out []rune
	for _, r := range printableSet {
		if !exclude[r] {
			out = append(out, r)
		}
	}
	return out
}

func sortedUniqueRunes(rs []rune) []rune {
	seen := toRuneSet(rs)
	out := make([]rune, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// shorthandClass expands one of \w \W \d \D \s \S to its resolved rune
// set.
func shorthandClass(letter rune) (runes []rune, ok bool) {
	switch letter {
	case 'w':
		return wordChars(), true
	case 'W':
		return negateAgainstPrintable(wordChars()), true
	case 'd':
		return digitChars(), true
	case 'D':
		return negateAgainstPrintable(digitChars()), true
	case 's':
		return whitespaceChars(), true
	case 'S':
		return negateAgainstPrintable(whitespaceChars()), true
	default:
		return nil, false
	}
}
