package wallet

import (
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// SaveLinkBase prefixes every signed save token.
const SaveLinkBase = "https://pay.google.com/gp/v/save/"

func init() {
	// The wallet API expects "aud": "google", not an array.
	jwt.Settings(jwt.WithFlattenAudience(true))
}

// SaveLink builds the savetowallet claim set for one object id, signs it with
// the service account's RSA key (RS256) and returns the full save URL.
func SaveLink(sa *ServiceAccount, typ ObjectType, objectID string, origins []string) (string, error) {
	key, err := sa.SigningKey()
	if err != nil {
		return "", err
	}
	if origins == nil {
		origins = []string{}
	}
	tok, err := jwt.NewBuilder().
		Issuer(sa.ClientEmail).
		Audience([]string{"google"}).
		Claim("typ", "savetowallet").
		Claim("origins", origins).
		Claim("payload", map[string]any{
			typ.PayloadKey(): []map[string]string{{"id": objectID}},
		}).
		Build()
	if err != nil {
		return "", fmt.Errorf("build save claim set: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, key))
	if err != nil {
		return "", fmt.Errorf("sign save token: %w", err)
	}
	return SaveLinkBase + string(signed), nil
}
