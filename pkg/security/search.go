package security

import (
	"fmt"
	"unicode/utf8"

	apperrors "user-admin-service/pkg/errors"
)

// MaxSearchQueryLength is the longest accepted search text, in runes. It is
// above the longest storable email, so no text past it can match a user.
const MaxSearchQueryLength = 256

// ValidateSearchQuery rejects search text longer than MaxSearchQueryLength runes.
// Accepted text is matched exactly as given.
func ValidateSearchQuery(query string) error {
	if n := utf8.RuneCountInString(query); n > MaxSearchQueryLength {
		return apperrors.NewValidationError("search",
			fmt.Sprintf("search must be at most %d characters, got %d", MaxSearchQueryLength, n))
	}
	return nil
}
