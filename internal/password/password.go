// Package password holds the single authoritative password policy check.
// Any interactive client must call the same contract rather than keep a
// parallel implementation.
package password

// Valid reports whether a candidate password satisfies the policy:
// exactly 12 characters, at least one ASCII uppercase letter, at least one
// ASCII lowercase letter, at least one digit, and nothing but ASCII
// letters and digits. All conditions are conjunctive.
func Valid(candidate string) bool {
	if len(candidate) != 12 {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		default:
			return false
		}
	}

	return hasUpper && hasLower && hasDigit
}
