package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateURL validates a package URL for safety.
// It ensures the URL parses and has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}

// ValidateSourceName validates a user-supplied package name (such as an
// upload filename) before it is echoed in reports and output filenames.
//
// Validation rules:
//   - Maximum length of 256 characters
//   - No control characters or null bytes
//   - No path separators
func ValidateSourceName(name string) error {
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "source name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "source name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "source name cannot contain path separators")
	}

	return nil
}
