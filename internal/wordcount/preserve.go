package wordcount

var (
	httpsScheme = []rune("https://")
	httpScheme  = []rune("http://")
)

// exciseURLs replaces every URL in rs with a single separator and returns
// the rewritten text and the number of URLs found. A URL is "http://" or
// "https://" followed by at least one non-whitespace character, and runs to
// the next whitespace.
func exciseURLs(rs []rune) ([]rune, int) {
	var out []rune
	count := 0
	last := 0

	for i := 0; i < len(rs); i++ {
		end, ok := matchURL(rs, i)
		if !ok {
			continue
		}
		if out == nil {
			out = make([]rune, 0, len(rs))
		}
		out = append(out, rs[last:i]...)
		out = append(out, separator)
		count++
		last = end
		i = end - 1
	}

	if count == 0 {
		return rs, 0
	}
	return append(out, rs[last:]...), count
}

func matchURL(rs []rune, i int) (int, bool) {
	start, ok := matchLiteral(rs, i, httpsScheme)
	if !ok {
		start, ok = matchLiteral(rs, i, httpScheme)
	}
	if !ok {
		return 0, false
	}

	end := start
	for end < len(rs) && !isSpace(rs[end]) {
		end++
	}

	return end, end > start
}

func matchLiteral(rs []rune, i int, lit []rune) (int, bool) {
	if len(rs)-i < len(lit) {
		return 0, false
	}
	for j, r := range lit {
		if rs[i+j] != r {
			return 0, false
		}
	}
	return i + len(lit), true
}

// exciseEmails replaces every email address in rs with a single separator.
//
// An address is a local part of ASCII letters, digits and ._%+- that starts
// on a word boundary, an "@", then a domain of ASCII letters, digits, dots
// and hyphens whose last dot is followed by at least two ASCII letters ending
// on a word boundary. Matches are found leftmost first and never overlap.
func exciseEmails(rs []rune) ([]rune, int) {
	var out []rune
	count := 0
	last := 0

	for at := 0; at < len(rs); at++ {
		if rs[at] != '@' {
			continue
		}

		start, ok := emailStart(rs, last, at)
		if !ok {
			continue
		}
		end, ok := emailEnd(rs, at)
		if !ok {
			continue
		}

		if out == nil {
			out = make([]rune, 0, len(rs))
		}
		out = append(out, rs[last:start]...)
		out = append(out, separator)
		count++
		last = end
		at = end - 1
	}

	if count == 0 {
		return rs, 0
	}
	return append(out, rs[last:]...), count
}

// emailStart finds the leftmost start of a local part ending at the "@" at
// index at. The local part may not begin before floor, the end of the
// previous match.
func emailStart(rs []rune, floor, at int) (int, bool) {
	lo := at
	for lo > floor && isLocalPart(rs[lo-1]) {
		lo--
	}

	for p := lo; p < at; p++ {
		if atWordBoundary(rs, p) {
			return p, true
		}
	}

	return 0, false
}

// emailEnd returns the end of the domain following the "@" at index at.
// The domain is greedy: the last dot that is followed by two or more
// letters and a word boundary ends it.
func emailEnd(rs []rune, at int) (int, bool) {
	runEnd := at + 1
	for runEnd < len(rs) && isDomain(rs[runEnd]) {
		runEnd++
	}

	for dot := runEnd - 1; dot >= at+2; dot-- {
		if rs[dot] != '.' {
			continue
		}

		end := dot + 1
		for end < len(rs) && isASCIILetter(rs[end]) {
			end++
		}
		if end-dot-1 >= 2 && atWordBoundary(rs, end) {
			return end, true
		}
	}

	return 0, false
}

func atWordBoundary(rs []rune, i int) bool {
	before := i > 0 && isWord(rs[i-1])
	after := i < len(rs) && isWord(rs[i])
	return before != after
}

func isLocalPart(r rune) bool {
	switch r {
	case '.', '_', '%', '+', '-':
		return true
	}
	return isASCIILetter(r) || isASCIIDigit(r)
}

func isDomain(r rune) bool {
	return r == '.' || r == '-' || isASCIILetter(r) || isASCIIDigit(r)
}
