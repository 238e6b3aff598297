package apiclient

import "unicode/utf8"

// maxErrorBodyBytes bounds how much of a failed response body ends up in an error message.
const maxErrorBodyBytes = 256

// truncateBytes cuts in to maxBytes and reports whether it did.
func truncateBytes(in []byte, maxBytes int) ([]byte, bool) {
	if maxBytes <= 0 || len(in) <= maxBytes {
		return in, false
	}
	return in[:maxBytes], true
}

// snippet renders a response body for an error message without splitting a rune.
func snippet(body []byte) string {
	out, truncated := truncateBytes(body, maxErrorBodyBytes)
	for len(out) > 0 && !utf8.Valid(out) {
		out = out[:len(out)-1]
	}
	if truncated {
		return string(out) + "..."
	}
	return string(out)
}
