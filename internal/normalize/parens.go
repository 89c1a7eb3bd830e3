package normalize

// repairParens drops every parenthesis that has no partner: a ')' that closes
// nothing and a '(' that is never closed. Only the parenthesis goes; the text
// after it is kept, so "(stars normalizes to stars (DESIGN.md §6).
func repairParens(s string) string {
	var open []int
	drop := make(map[int]bool)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			open = append(open, i)
		case ')':
			if len(open) == 0 {
				drop[i] = true
				continue
			}
			open = open[:len(open)-1]
		}
	}
	for _, i := range open {
		drop[i] = true
	}
	if len(drop) == 0 {
		return s
	}

	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if !drop[i] {
			b = append(b, s[i])
		}
	}
	return string(b)
}
