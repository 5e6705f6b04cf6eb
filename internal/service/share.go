package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// DefaultShareBaseURL is the host that share links point at unless configured.
const DefaultShareBaseURL = "https://hila-travel.app"

const (
	shareTokenPrefix   = "hila-"
	shareTokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	shareTokenGroupLen = 5
)

// TokenGenerator produces a new share token.
type TokenGenerator func() (string, error)

// NewShareToken returns a crypto-random token of the form hila-XXXXX-XXXXX
// drawn from an alphabet without I, O, 0 or 1.
func NewShareToken() (string, error) {
	var b strings.Builder
	b.WriteString(shareTokenPrefix)
	size := big.NewInt(int64(len(shareTokenAlphabet)))
	for g := 0; g < 2; g++ {
		if g > 0 {
			b.WriteByte('-')
		}
		for i := 0; i < shareTokenGroupLen; i++ {
			n, err := rand.Int(rand.Reader, size)
			if err != nil {
				return "", fmt.Errorf("service.NewShareToken: %w", err)
			}
			b.WriteByte(shareTokenAlphabet[n.Int64()])
		}
	}
	return b.String(), nil
}

// ShareURL builds the client link for token under baseURL.
func ShareURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/trip/" + token
}
