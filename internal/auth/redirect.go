package auth

import (
	"net/url"
	"strings"
)

// CallbackPathPrefix is the OAuth provider redirect target on this site
const CallbackPathPrefix = "/api/auth/callback"

// ResolveRedirect decides where to send a user after sign-in given an
// arbitrary requested return URL. Rules, in priority order:
//
//  1. The provider's own callback URL always resolves to the hub. Honoring it
//     as a return target would bounce the user straight back into the flow.
//  2. A relative path is resolved against the site base and honored.
//  3. An absolute URL on the site's own origin is honored unchanged.
//  4. Anything else (cross-origin, scheme-relative, unparseable) falls back
//     to the hub. This is the open-redirect guard.
//
// Malformed input never causes an error; it lands in rule 4.
func ResolveRedirect(requested, siteBase, hubPath string) string {
	hub := strings.TrimSuffix(siteBase, "/") + hubPath

	if requested == "" {
		return hub
	}

	// Scheme-relative URLs ("//evil.example") parse as absolute without a
	// scheme. Treat them as cross-origin outright.
	if strings.HasPrefix(requested, "//") {
		return hub
	}

	// Rule 2: relative path
	if strings.HasPrefix(requested, "/") {
		if strings.HasPrefix(requested, CallbackPathPrefix) {
			return hub
		}
		return strings.TrimSuffix(siteBase, "/") + requested
	}

	reqURL, err := url.Parse(requested)
	if err != nil || !reqURL.IsAbs() {
		return hub
	}
	baseURL, err := url.Parse(siteBase)
	if err != nil {
		return hub
	}

	// Rule 1: callback completion on any origin
	if strings.HasPrefix(reqURL.Path, CallbackPathPrefix) {
		return hub
	}

	// Rule 3: same-origin absolute
	if sameOrigin(reqURL, baseURL) {
		return requested
	}

	return hub
}

func sameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host
}
