package automation

import "strings"

// FindWindowByTitle returns the first visible window whose title contains
// substr, ignoring case.
func (f *Facade) FindWindowByTitle(substr string) (WindowEntry, bool) {
	matches := f.FindWindowsByTitle(substr)
	if len(matches) == 0 {
		return WindowEntry{}, false
	}
	return matches[0], true
}

// FindWindowsByTitle returns every visible window whose title contains
// substr, ignoring case, in enumeration order.
func (f *Facade) FindWindowsByTitle(substr string) []WindowEntry {
	needle := strings.ToLower(substr)
	matches := []WindowEntry{}
	for _, w := range f.VisibleWindows() {
		if strings.Contains(strings.ToLower(w.Title), needle) {
			matches = append(matches, w)
		}
	}
	return matches
}
