package model

import (
	"fmt"
	"strings"

	"github.com/elliotwutingfeng/asciiset"
)

// Token is a name packed into 64 bits as base-38 digits, least significant
// digit first. Digit 0 terminates the string.
type Token uint64

const tokenAlphabet = "\x000123456789abcdefghijklmnopqrstuvwxyz_"

const tokenMaxLen = 12 // 38^12 < 2^64 < 38^13

var tokenChars, _ = asciiset.MakeASCIISet(tokenAlphabet[1:])

func (t Token) String() string {
	var sb strings.Builder
	for v := uint64(t); v > 0; v /= 38 {
		sb.WriteByte(tokenAlphabet[v%38])
	}
	return sb.String()
}

// ParseToken packs s into a Token. Only [0-9a-z_] are allowed.
func ParseToken(s string) (Token, error) {
	if len(s) > tokenMaxLen {
		return 0, fmt.Errorf("token %q: longer than %d characters", s, tokenMaxLen)
	}
	var v uint64
	for i := len(s) - 1; i >= 0; i-- {
		if !tokenChars.Contains(s[i]) {
			return 0, fmt.Errorf("token %q: invalid character %q", s, s[i])
		}
		v = v*38 + uint64(strings.IndexByte(tokenAlphabet, s[i]))
	}
	return Token(v), nil
}

// MustToken is ParseToken for constants; it panics on invalid input
func MustToken(s string) Token {
	t, err := ParseToken(s)
	if err != nil {
		panic(err)
	}
	return t
}
