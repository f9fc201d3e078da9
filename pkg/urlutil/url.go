// SPDX-License-Identifier: MPL-2.0

package urlutil

import (
	"errors"
	"net/url"
	"strings"
)

// defaultPorts lists the special schemes and the port each one implies.
// file has no port; the empty value still marks it as special.
var defaultPorts = map[string]string{
	"ftp":   "21",
	"file":  "",
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// URL is a parsed, canonicalized absolute URL. The zero value is not usable;
// obtain one from Parse or Resolve. A URL is immutable.
type URL struct {
	scheme string
	// opaque holds everything after "scheme:" for URLs without a
	// hierarchical path, e.g. "preact" in "npm:preact".
	opaque       string
	userinfo     string
	host         string // hostname plus ":port" when the port is not the default
	hasAuthority bool
	path         string // percent-encoded
	query        string
	hasQuery     bool
	fragment     string
	hasFragment  bool
}

// IsSpecialScheme reports whether scheme is one of the WHATWG special schemes.
func IsSpecialScheme(scheme string) bool {
	_, ok := defaultPorts[strings.ToLower(scheme)]
	return ok
}

// Parse parses raw as an absolute URL.
func Parse(raw string) (*URL, error) {
	return Resolve(nil, raw)
}

// Resolve parses ref relative to base. With a nil base, ref must be absolute.
func Resolve(base *URL, ref string) (*URL, error) {
	input := stripControl(ref)

	if scheme, rest, ok := splitScheme(input); ok {
		if !IsSpecialScheme(scheme) {
			u, err := url.Parse(scheme + ":" + rest)
			if err != nil {
				return nil, newError(ref, base, "", unwrapURLError(err))
			}
			return fromNetURL(u, ref, base)
		}

		rest = slashify(rest)
		if !strings.HasPrefix(rest, "//") {
			// "https:foo" is relative to a base of the same scheme and an
			// authority otherwise.
			if base != nil && base.scheme == scheme && base.opaque == "" {
				return resolveRelative(base, rest, ref)
			}
			if scheme == "file" {
				rest = "///" + strings.TrimLeft(rest, "/")
			} else {
				rest = "//" + strings.TrimLeft(rest, "/")
			}
		}
		u, err := url.Parse(scheme + ":" + rest)
		if err != nil {
			return nil, newError(ref, base, "", unwrapURLError(err))
		}
		return fromNetURL(u, ref, base)
	}

	if base == nil {
		return nil, newError(ref, nil, "relative URL without a base", nil)
	}
	if base.IsSpecial() {
		input = slashify(input)
	}
	return resolveRelative(base, input, ref)
}

// resolveRelative applies a scheme-less reference to base.
func resolveRelative(base *URL, input, original string) (*URL, error) {
	if base.opaque != "" {
		if strings.HasPrefix(input, "#") {
			out := *base
			out.fragment, out.hasFragment = input[1:], true
			return &out, nil
		}
		return nil, newError(original, base, "base URL cannot have relative references", nil)
	}

	if strings.HasPrefix(input, "//") {
		u, err := url.Parse(base.scheme + ":" + input)
		if err != nil {
			return nil, newError(original, base, "", unwrapURLError(err))
		}
		return fromNetURL(u, original, base)
	}

	if firstSegmentHasColon(input) {
		return nil, newError(original, base, "first path segment of a relative reference cannot contain a colon", nil)
	}

	r, err := url.Parse(input)
	if err != nil {
		return nil, newError(original, base, "", unwrapURLError(err))
	}

	out := &URL{
		scheme:       base.scheme,
		userinfo:     base.userinfo,
		host:         base.host,
		hasAuthority: base.hasAuthority,
	}

	refPath := r.EscapedPath()
	switch {
	case refPath == "":
		out.path = base.path
		if r.RawQuery != "" || r.ForceQuery {
			out.query, out.hasQuery = r.RawQuery, true
		} else {
			out.query, out.hasQuery = base.query, base.hasQuery
		}
	case strings.HasPrefix(refPath, "/"):
		out.path = refPath
		out.query, out.hasQuery = r.RawQuery, r.RawQuery != "" || r.ForceQuery
	default:
		out.path = mergePath(base, refPath)
		out.query, out.hasQuery = r.RawQuery, r.RawQuery != "" || r.ForceQuery
	}

	out.path = removeDotSegments(canonicalEscapes(out.path))
	if out.IsSpecial() && out.path == "" {
		out.path = "/"
	}
	if r.Fragment != "" || r.RawFragment != "" {
		out.fragment, out.hasFragment = r.EscapedFragment(), true
	}
	return out, nil
}

// fromNetURL canonicalizes a net/url result.
func fromNetURL(u *url.URL, original string, base *URL) (*URL, error) {
	out := &URL{scheme: strings.ToLower(u.Scheme)}
	if u.RawQuery != "" || u.ForceQuery {
		out.query, out.hasQuery = u.RawQuery, true
	}
	if u.Fragment != "" || u.RawFragment != "" {
		out.fragment, out.hasFragment = u.EscapedFragment(), true
	}

	if u.Opaque != "" {
		out.opaque = u.Opaque
		return out, nil
	}

	special := IsSpecialScheme(out.scheme)
	out.hasAuthority = special || u.Host != "" || u.User != nil
	if u.User != nil {
		out.userinfo = u.User.String()
	}

	hostname, port := u.Hostname(), u.Port()
	if special {
		hostname = strings.ToLower(hostname)
		if port == defaultPorts[out.scheme] {
			port = ""
		}
		if out.scheme == "file" && hostname == "localhost" {
			hostname = ""
		}
		if out.scheme != "file" && hostname == "" {
			return nil, newError(original, base, "missing host", nil)
		}
	}
	if strings.Contains(hostname, ":") {
		hostname = "[" + hostname + "]"
	}
	out.host = hostname
	if port != "" {
		out.host += ":" + port
	}

	out.path = removeDotSegments(canonicalEscapes(u.EscapedPath()))
	if special && out.path == "" {
		out.path = "/"
	}
	return out, nil
}

// String serializes the URL.
func (u *URL) String() string {
	var sb strings.Builder
	sb.WriteString(u.scheme)
	sb.WriteByte(':')
	if u.opaque != "" {
		sb.WriteString(u.opaque)
	} else {
		if u.hasAuthority {
			sb.WriteString("//")
			if u.userinfo != "" {
				sb.WriteString(u.userinfo)
				sb.WriteByte('@')
			}
			sb.WriteString(u.host)
		}
		sb.WriteString(u.path)
	}
	if u.hasQuery {
		sb.WriteByte('?')
		sb.WriteString(u.query)
	}
	if u.hasFragment {
		sb.WriteByte('#')
		sb.WriteString(u.fragment)
	}
	return sb.String()
}

// IsSpecial reports whether the URL uses a special scheme.
func (u *URL) IsSpecial() bool { return IsSpecialScheme(u.scheme) }

// mergePath joins a relative path onto the directory of the base path.
func mergePath(base *URL, ref string) string {
	if base.hasAuthority && base.path == "" {
		return "/" + ref
	}
	i := strings.LastIndexByte(base.path, '/')
	if i < 0 {
		return ref
	}
	return base.path[:i+1] + ref
}

// removeDotSegments drops "." and ".." segments from a percent-encoded path.
func removeDotSegments(p string) string {
	if p == "" {
		return p
	}
	abs := strings.HasPrefix(p, "/")
	segs := strings.Split(p, "/")
	if abs {
		segs = segs[1:]
	}

	out := make([]string, 0, len(segs))
	for i, s := range segs {
		last := i == len(segs)-1
		switch {
		case isSingleDot(s):
			if last {
				out = append(out, "")
			}
		case isDoubleDot(s):
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, s)
		}
	}

	res := strings.Join(out, "/")
	if abs {
		res = "/" + res
	}
	return res
}

func isSingleDot(s string) bool {
	return s == "." || strings.EqualFold(s, "%2e")
}

func isDoubleDot(s string) bool {
	switch strings.ToLower(s) {
	case "..", ".%2e", "%2e.", "%2e%2e":
		return true
	}
	return false
}

// canonicalEscapes decodes percent-escapes of unreserved characters and
// uppercases the hex digits of the rest, so "%7euser" and "~user" compare
// equal.
func canonicalEscapes(p string) string {
	if !strings.Contains(p, "%") {
		return p
	}
	var sb strings.Builder
	sb.Grow(len(p))
	for i := 0; i < len(p); i++ {
		if p[i] != '%' || i+2 >= len(p) || !isHex(p[i+1]) || !isHex(p[i+2]) {
			sb.WriteByte(p[i])
			continue
		}
		if c := unhex(p[i+1])<<4 | unhex(p[i+2]); isUnreserved(c) {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('%')
			sb.WriteByte(upperHex(p[i+1]))
			sb.WriteByte(upperHex(p[i+2]))
		}
		i += 2
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func upperHex(c byte) byte {
	if 'a' <= c && c <= 'f' {
		return c - 'a' + 'A'
	}
	return c
}

// splitScheme splits "scheme:rest" when input starts with a valid scheme.
func splitScheme(s string) (scheme, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z'):
		case ('0' <= c && c <= '9') || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return "", "", false
			}
		case c == ':':
			if i == 0 {
				return "", "", false
			}
			return strings.ToLower(s[:i]), s[i+1:], true
		default:
			return "", "", false
		}
	}
	return "", "", false
}

// firstSegmentHasColon reports whether the first path segment of a relative
// reference contains a colon, which would read as a scheme. A leading dot
// segment such as "./a:b" disambiguates the reference.
func firstSegmentHasColon(ref string) bool {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(ref, "/"), "/")
	if isSingleDot(first) || isDoubleDot(first) {
		return false
	}
	return strings.Contains(first, ":")
}

// slashify turns backslashes into slashes before the query or fragment.
func slashify(s string) string {
	end := len(s)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		end = i
	}
	return strings.ReplaceAll(s[:end], `\`, "/") + s[end:]
}

// stripControl trims leading and trailing C0 controls and spaces and removes
// tabs and newlines anywhere in the input.
func stripControl(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool { return r <= 0x20 })
	if strings.ContainsAny(s, "\t\n\r") {
		s = strings.NewReplacer("\t", "", "\n", "", "\r", "").Replace(s)
	}
	return s
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// HasPrefix reports whether the serialization of u starts with that of prefix.
func (u *URL) HasPrefix(prefix *URL) bool {
	return strings.HasPrefix(u.String(), prefix.String())
}
