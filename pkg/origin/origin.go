// Package origin normalizes URLs into the scheme://host[:port] origins used
// to address outbound messages and to validate inbound ones.
package origin

import (
	"net/url"
	"strings"
)

// File is the origin of a local file context.
const File = "file://"

// Wildcard is the unrestricted target origin.
const Wildcard = "*"

var defaultPorts = map[string]string{
	"http":  "80",
	"ws":    "80",
	"https": "443",
	"wss":   "443",
}

// Resolve returns the origin of rawURL. Relative URLs resolve against base,
// the location of the embedding document. Input that does not parse, or that
// has no host, falls back to the origin of base. A nil base is treated as a
// file location.
func Resolve(rawURL string, base *url.URL) string {
	if base == nil {
		base = &url.URL{Scheme: "file", Path: "/"}
	}

	u, err := base.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		u = base
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = strings.ToLower(base.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host += ":" + port
	}

	return scheme + "://" + host
}

// Parse parses a document location. Blank input means no location and
// yields a nil URL.
func Parse(location string) (*url.URL, error) {
	if strings.TrimSpace(location) == "" {
		return nil, nil
	}
	return url.Parse(location)
}

// Target returns the targetOrigin to post to o with. File contexts cannot be
// restricted, so they are addressed with the wildcard.
func Target(o string) string {
	if o == File {
		return Wildcard
	}
	return o
}

// Normalize maps the origin reported on an inbound event to the form Resolve
// produces. Messages from file contexts report the string "null".
func Normalize(eventOrigin string) string {
	if eventOrigin == "null" {
		return File
	}
	return eventOrigin
}

// Matches reports whether a message posted with targetOrigin may be delivered
// to a context whose origin is o.
func Matches(targetOrigin, o string) bool {
	return targetOrigin == Wildcard || targetOrigin == o
}
