package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/AlibekovAA/fadechat/internal/common/constants"
)

type TokenGenerator interface {
	NewToken() (string, error)
}

// RandomTokenGenerator returns hex encoded values of constants.TokenSize
// bytes read from crypto/rand.
type RandomTokenGenerator struct{}

func NewRandomTokenGenerator() *RandomTokenGenerator {
	return &RandomTokenGenerator{}
}

func (g *RandomTokenGenerator) NewToken() (string, error) {
	b := make([]byte, constants.TokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// DigestToken is the at-rest form of a session token value.
func DigestToken(value string) string {
	sum := blake3.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
