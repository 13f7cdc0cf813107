package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// NewDemoAddress derives an Ethereum-style address from fresh random bytes.
// No key material is kept; the address is for display only.
func NewDemoAddress() (string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("failed to read random seed: %w", err)
	}
	return AddressFromSeed(seed), nil
}

// AddressFromSeed returns the EIP-55 checksummed address of keccak256(seed)
func AddressFromSeed(seed []byte) string {
	digest := keccak256(seed)
	return ChecksumAddress(hex.EncodeToString(digest[12:]))
}

// ChecksumAddress applies EIP-55 mixed-case checksumming to a hex address
func ChecksumAddress(addr string) string {
	lower := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	hash := hex.EncodeToString(keccak256([]byte(lower)))

	var b strings.Builder
	b.WriteString("0x")
	for i, c := range lower {
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			b.WriteRune(c - 'a' + 'A')
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// IsAddress reports whether s looks like a 20-byte hex address
func IsAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != 42 {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}
