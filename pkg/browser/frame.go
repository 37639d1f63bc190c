package browser

import (
	"fmt"
	"regexp"
)

// frameNamePattern matches a bare frame name or id such as "checkout" or
// "payment-frame", as opposed to a CSS selector.
var frameNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\-]*$`)

// frameSelector maps a frame reference to a CSS selector. A bare name is
// looked up as the name or id of an iframe or frame element; anything else,
// including the tag names themselves, is used as a CSS selector.
func frameSelector(ref string) string {
	if !frameNamePattern.MatchString(ref) || ref == "iframe" || ref == "frame" {
		return ref
	}
	return fmt.Sprintf(`iframe[name=%[1]q], iframe[id=%[1]q], frame[name=%[1]q], frame[id=%[1]q]`, ref)
}
