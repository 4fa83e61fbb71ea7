package app

import (
	"fmt"
	"net/url"
)

// SwapScheme replaces the scheme of rawURL, operating on the parsed URL so
// matches inside the path or query can never be touched.
func SwapScheme(rawURL, scheme string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("swap scheme: %w", err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("swap scheme: %q has no scheme", rawURL)
	}
	u.Scheme = scheme
	return u.String(), nil
}
