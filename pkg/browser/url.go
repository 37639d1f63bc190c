package browser

import (
	"regexp"
	"strings"

	"github.com/entrhq/browserkit/pkg/config"
)

const httpsPrefix = "https://"

// schemePattern matches an explicit URL scheme such as http:// or file://.
var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// NormalizeURL prepares a navigation target.
//
// A URL that starts with https:// is returned unchanged and a bare host gets
// https:// prepended. Under SchemeForceHTTPS anything else is prefixed too, so
// "http://example.com" becomes "https://http://example.com"; under
// SchemePreserveExplicit an explicit scheme is left alone.
func NormalizeURL(raw string, policy config.SchemePolicy) string {
	if strings.HasPrefix(raw, httpsPrefix) {
		return raw
	}
	if policy != config.SchemeForceHTTPS && schemePattern.MatchString(raw) {
		return raw
	}
	return httpsPrefix + raw
}
