package fleetname

import (
	"fmt"
	"strings"
)

// DefaultSuffixDigits is the number of trailing hardware UUID characters
// used as the name suffix.
const DefaultSuffixDigits = 7

// hostnameExclusionSet lists every character stripped from the candidate
// name to produce the hostname-safe variant. The separator "-" is part of
// the set, so the sanitized hostname loses the separator between the model
// prefix and the UUID suffix. That matches the names already enrolled in
// the fleet inventory, so it must not be "fixed" here.
const hostnameExclusionSet = " \t\n\r'&()*%$\"\\-~?!<>[]{}=+:;,.|^#@"

// DeriveNames transforms a raw model identifier and hardware UUID into the
// candidate display name and its hostname-safe variant.
//
// The model identifier is cleaned by removing every "/" (Apple part numbers
// such as "Z1AU001HXB/A" carry one). The suffix is the trailing digitCount
// characters of uuid. The candidate is cleanedModel + "-" + suffix.
//
// An empty cleaned model or suffix still yields a candidate; rejecting empty
// results is the validator's job, not this function's.
func DeriveNames(model, uuid string, digitCount int) (candidate, sanitized string, err error) {
	cleaned := strings.ReplaceAll(model, "/", "")

	if digitCount < 1 {
		return "", "", fmt.Errorf("%w: digit count %d must be positive", ErrInvalidDigitCount, digitCount)
	}

	offset := len(uuid) - digitCount
	if offset < 0 {
		return "", "", fmt.Errorf("%w: hardware UUID has %d characters, need %d", ErrInvalidDigitCount, len(uuid), digitCount)
	}

	suffix := uuid[offset : offset+digitCount]

	// Re-check the extracted length. Slicing guarantees it for ASCII input,
	// but the UUID source is external and this guards against encoding
	// surprises reaching the applied name.
	if len(suffix) != digitCount {
		return "", "", fmt.Errorf("%w: got %d characters, want %d", ErrSuffixLengthMismatch, len(suffix), digitCount)
	}

	candidate = cleaned + "-" + suffix

	return candidate, sanitizeHostname(candidate), nil
}

// sanitizeHostname removes every character of the exclusion set from name,
// leaving only characters permitted in a DNS-style hostname label.
func sanitizeHostname(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(hostnameExclusionSet, r) {
			return -1
		}

		return r
	}, name)
}
