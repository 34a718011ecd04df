package core

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// ParseLegacyCookieComponents splits an fbs_ cookie value into its
// components. Quotes are dropped, pairs are separated by '&' with empty pairs
// skipped, and only the first two '='-separated segments of a pair are kept,
// so a value that itself contains '=' is truncated at that point.
func ParseLegacyCookieComponents(raw string) map[string]string {
	raw = strings.ReplaceAll(raw, `"`, "")
	components := map[string]string{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		segments := strings.Split(pair, "=")
		value := ""
		if len(segments) > 1 {
			value = segments[1]
		}
		components[segments[0]] = value
	}
	return components
}

// LegacyCanonicalString concatenates key=value for every component except
// sig, in lexicographic key order with no separator.
func LegacyCanonicalString(components map[string]string) string {
	var builder strings.Builder
	for _, key := range sortedKeys(components) {
		if key == "sig" {
			continue
		}
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(components[key])
	}
	return builder.String()
}

// LegacyCookieSignature is the lowercase MD5 hex of the canonical string
// followed by the app secret.
func LegacyCookieSignature(components map[string]string, secret string) string {
	sum := md5.Sum([]byte(LegacyCanonicalString(components) + secret))
	return hex.EncodeToString(sum[:])
}

// ParseLegacyCookie verifies the signature and expiry of an fbs_ cookie. An
// unauthenticated cookie yields false rather than an error.
func ParseLegacyCookie(raw string, secret string, now time.Time) (SessionInfo, bool) {
	components := ParseLegacyCookieComponents(raw)
	sig, ok := components["sig"]
	if !ok || LegacyCookieSignature(components, secret) != sig {
		return SessionInfo{}, false
	}
	if !legacyCookieLive(components["expires"], now) {
		return SessionInfo{}, false
	}
	return newSessionInfo(SessionSourceLegacy, components), true
}

func legacyCookieLive(expires string, now time.Time) bool {
	if expires == "0" {
		return true
	}
	deadline, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		deadline = 0
	}
	return now.Unix() < deadline
}
