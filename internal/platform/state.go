package platform

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// NewState builds the anti-forgery state for an authorize URL. The prefix is
// 16 random bytes hex-encoded, the suffix recovers the initiating user:
// <hex>:<userID>. The prefix is unguessable; the suffix after the final ':'
// is the user ID verbatim.
func NewState(userID string) (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(buf[:]) + ":" + userID, nil
}

// UserIDFromState recovers the user identity embedded in a state token.
func UserIDFromState(state string) (string, error) {
	idx := strings.LastIndex(state, ":")
	if idx < 0 || idx == len(state)-1 {
		return "", fmt.Errorf("malformed state %q", state)
	}
	return state[idx+1:], nil
}
