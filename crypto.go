package rentchain

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// GetHash returns the legacy Keccak-256 digest used for wallet signatures.
func GetHash(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func loadKey(privatekey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privatekey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// PrivKeyToAddr derives the checksummed address controlled by privatekey.
func PrivKeyToAddr(privatekey string) (string, error) {
	key, err := loadKey(privatekey)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

// GenerateKey returns a fresh hex private key and its address.
func GenerateKey() (string, string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("%x", crypto.FromECDSA(key)), crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

// SignBytes signs the Keccak-256 digest of data. The result is 65 bytes, R || S || V.
func SignBytes(data []byte, privatekey string) ([]byte, error) {
	key, err := loadKey(privatekey)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(GetHash(data), key)
}

// RecoverAddress returns the address that produced signature over data.
func RecoverAddress(data []byte, signature []byte) (string, error) {
	if len(signature) != crypto.SignatureLength {
		return "", fmt.Errorf("invalid signature length: %d", len(signature))
	}
	sig := make([]byte, len(signature))
	copy(sig, signature)
	// wallets emit V as 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(GetHash(data), sig)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// VerifySignature checks that signature over data was made by address.
func VerifySignature(data []byte, signature []byte, address string) error {
	signer, err := RecoverAddress(data, signature)
	if err != nil {
		return err
	}
	if !SameAddress(signer, address) {
		return fmt.Errorf("signature mismatch: signed by %s, expected %s", signer, address)
	}
	return nil
}
