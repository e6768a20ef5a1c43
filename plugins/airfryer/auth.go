package airfryer

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// authScheme is the authorization scheme used by the appliance firmware,
// both in the Authorization request header and the WWW-Authenticate
// challenge header.
const authScheme = "PHILIPS-Condor"

// deriveToken computes the rolling auth token from a challenge and the
// device credentials. All three inputs are base64 text; the token is
// base64(idBytes || SHA-256(challengeBytes || idBytes || secretBytes)).
func deriveToken(challenge, clientID, clientSecret string) (string, error) {
	challengeBytes, err := base64.StdEncoding.DecodeString(challenge)
	if err != nil {
		return "", fmt.Errorf("decode challenge: %w", err)
	}
	idBytes, err := base64.StdEncoding.DecodeString(clientID)
	if err != nil {
		return "", fmt.Errorf("decode client id: %w", err)
	}
	secretBytes, err := base64.StdEncoding.DecodeString(clientSecret)
	if err != nil {
		return "", fmt.Errorf("decode client secret: %w", err)
	}

	digest := sha256.New()
	digest.Write(challengeBytes)
	digest.Write(idBytes)
	digest.Write(secretBytes)

	token := append(idBytes, digest.Sum(nil)...)
	return base64.StdEncoding.EncodeToString(token), nil
}
