package wallet

import (
	"fmt"
	"regexp"
)

// Object ids may only contain word characters, '.', '_' and '-'; everything
// else in the user portion is squashed to '_'.
var invalidIDChars = regexp.MustCompile(`[^\w.-]`)

// SanitizeUserID makes a user identifier safe for embedding in an object id.
func SanitizeUserID(userID string) string {
	return invalidIDChars.ReplaceAllString(userID, "_")
}

// ObjectID derives the object identifier as {issuer}.{sanitized user}-{class}.
// Collisions between distinct user ids that sanitize equally are the caller's
// problem, same as in the upstream API samples.
func ObjectID(issuerID, userID, classID string) string {
	return fmt.Sprintf("%s.%s-%s", issuerID, SanitizeUserID(userID), classID)
}

// ClassID derives the fully qualified class identifier as {issuer}.{class}.
func ClassID(issuerID, classID string) string {
	return fmt.Sprintf("%s.%s", issuerID, classID)
}
