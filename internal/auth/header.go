package auth

import "strings"

// ParseBearer extracts the session id from an Authorization header value.
// The scheme is case-insensitive and the value must split into exactly two parts on a single space.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrMalformedHeader
	}

	return parts[1], nil
}
