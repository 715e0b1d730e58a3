package wallet

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// personalSignPrefix is the EIP-191 prefix wallets apply before hashing.
const personalSignPrefix = "\x19Ethereum Signed Message:\n"

const signatureLength = 65

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ErrInvalidAddress is returned when the input is not a 20-byte hex address.
var ErrInvalidAddress = fmt.Errorf("invalid wallet address")

// NormalizeAddress validates and lowercases a wallet address. Every layer of
// the application stores and compares the normalized form.
func NormalizeAddress(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	if !addressPattern.MatchString(trimmed) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(trimmed), nil
}

// TruncateAddress renders the shortened display form (first 6 and last 4
// characters joined by an ellipsis) used as a fallback display name.
func TruncateAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}

// PersonalSignHash computes the EIP-191 digest of a message.
func PersonalSignHash(message []byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(fmt.Sprintf("%s%d", personalSignPrefix, len(message))))
	hasher.Write(message)
	return hasher.Sum(nil)
}

// RecoverAddress recovers the signing address from a personal-sign signature.
// The signature is the 65-byte r||s||v layout produced by wallet SDKs, with v
// accepted as either 0/1 or 27/28.
func RecoverAddress(message, signature []byte) (string, error) {
	if len(signature) != signatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", signatureLength, len(signature))
	}

	v := signature[signatureLength-1]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return "", fmt.Errorf("invalid recovery id %d", signature[signatureLength-1])
	}

	// RecoverCompact wants the header byte first.
	compact := make([]byte, signatureLength)
	compact[0] = 27 + v
	copy(compact[1:], signature[:signatureLength-1])

	pubKey, _, err := ecdsa.RecoverCompact(compact, PersonalSignHash(message))
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}

	uncompressed := pubKey.SerializeUncompressed()
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(uncompressed[1:])
	digest := hasher.Sum(nil)

	return "0x" + hex.EncodeToString(digest[12:]), nil
}

// VerifyPersonalSignature checks that sigHex is a valid personal-sign
// signature of message by the claimed address. An absent or undecodable
// signature is an explicit failure, never a silent pass.
func VerifyPersonalSignature(address, message, sigHex string) error {
	claimed, err := NormalizeAddress(address)
	if err != nil {
		return err
	}

	raw := strings.TrimSpace(strings.TrimPrefix(sigHex, "0x"))
	if raw == "" {
		return fmt.Errorf("signature is required")
	}
	signature, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	recovered, err := RecoverAddress([]byte(message), signature)
	if err != nil {
		return err
	}
	if recovered != claimed {
		return fmt.Errorf("signature does not match address")
	}
	return nil
}
