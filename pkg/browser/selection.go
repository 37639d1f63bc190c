package browser

// Selection holds the non-empty result of QuerySelector.
// With exactly one match One reports that element; with several, All
// returns them in the order the engine reported.
type Selection struct {
	elements []Element
}

// Len returns the number of matched elements.
func (s Selection) Len() int {
	return len(s.elements)
}

// One returns the element when the query matched exactly one, ok is false otherwise.
func (s Selection) One() (Element, bool) {
	if len(s.elements) != 1 {
		return nil, false
	}
	return s.elements[0], true
}

// All returns every matched element.
func (s Selection) All() []Element {
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// First returns the first matched element, or nil for an empty selection.
func (s Selection) First() Element {
	if len(s.elements) == 0 {
		return nil
	}
	return s.elements[0]
}
