package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// GenerateDepositAddress returns a random BEP20-style deposit address for
// display purposes. No key material backs it; deposits are simulated.
func GenerateDepositAddress() (string, error) {
	b := make([]byte, common.AddressLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate deposit address: %w", err)
	}
	return common.BytesToAddress(b).Hex(), nil
}

// IsValidAddress reports whether s is a well-formed hex address on the BEP20
// (BSC) network.
func IsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}
