package manifest

import (
	"net/url"
	"path"
	"strings"
)

// NormalizePath converts a manifest href into the form used by archive
// entry names. The base (an xml:base value, possibly empty) is prefixed
// unless href is an absolute URL. An absolute URL base makes the result an
// absolute URL too, so the file is treated as hosted outside the package.
//
//	NormalizePath("", "./index.html")           // "index.html"
//	NormalizePath("", `content\page.html?x=1`)  // "content/page.html"
//	NormalizePath("sco1/", "launch.html#top")   // "sco1/launch.html"
//	NormalizePath("", "https://cdn.example/x")  // "https://cdn.example/x"
//	NormalizePath("https://cdn.example/c", "a.js")  // "https://cdn.example/c/a.js"
func NormalizePath(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if IsExternal(href) {
		return href
	}

	href = strings.ReplaceAll(href, "\\", "/")
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if href == "" {
		return ""
	}

	base = strings.TrimSpace(base)
	if IsExternal(base) {
		return resolveURL(base, href)
	}
	base = strings.ReplaceAll(base, "\\", "/")
	if base != "" && !strings.HasPrefix(href, "/") {
		href = strings.TrimSuffix(base, "/") + "/" + href
	}

	cleaned := path.Clean(strings.TrimLeft(href, "/"))
	for strings.HasPrefix(cleaned, "./") {
		cleaned = cleaned[2:]
	}
	if cleaned == "." {
		return ""
	}
	return cleaned
}

// resolveURL resolves href against an absolute base URL, treating the base
// as a directory like local xml:base values.
func resolveURL(base, href string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	ref, err := url.Parse(href)
	if err != nil {
		return base
	}
	return u.ResolveReference(ref).String()
}

// JoinBase combines an outer and inner xml:base value.
func JoinBase(outer, inner string) string {
	inner = strings.TrimSpace(inner)
	outer = strings.TrimSpace(outer)
	switch {
	case inner == "":
		return outer
	case outer == "" || IsExternal(inner) || strings.HasPrefix(inner, "/"):
		return inner
	}
	return strings.TrimSuffix(outer, "/") + "/" + inner
}

// IsExternal reports whether p is an absolute URL rather than a path inside
// the package.
func IsExternal(p string) bool {
	i := strings.Index(p, "://")
	if i <= 0 {
		return false
	}
	for _, r := range p[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}
