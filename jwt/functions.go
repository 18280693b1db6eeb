package jwt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/totegamma/rentchain"
)

// Create creates a JWT signed by the wallet key privatekey.
// Issuer defaults to the address of that key.
func Create(claims Claims, privatekey string) (string, error) {
	address, err := rentchain.PrivKeyToAddr(privatekey)
	if err != nil {
		return "", err
	}
	if claims.Issuer == "" {
		claims.Issuer = address
	}

	header := Header{
		Type:      TokenType,
		Algorithm: Algorithm,
	}
	headerStr, err := json.Marshal(header)
	if err != nil {
		return "", err
	}

	payloadStr, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	headerB64 := base64.RawURLEncoding.EncodeToString(headerStr)
	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadStr)
	target := headerB64 + "." + payloadB64

	signatureBytes, err := rentchain.SignBytes([]byte(target), privatekey)
	if err != nil {
		return "", err
	}
	signatureB64 := base64.RawURLEncoding.EncodeToString(signatureBytes)

	return target + "." + signatureB64, nil
}

// Validate checks that the jwt signature is valid and the token is not expired.
func Validate(jwt string) (*Header, *Claims, error) {
	return ValidateAt(jwt, time.Now())
}

// ValidateAt is Validate with an explicit current time. exp is required and iss must be
// the address that produced the signature; on success claims.Issuer holds that address.
func ValidateAt(jwt string, now time.Time) (*Header, *Claims, error) {

	split := strings.Split(jwt, ".")
	if len(split) != 3 {
		return nil, nil, fmt.Errorf("invalid jwt format")
	}

	var header Header
	headerBytes, err := base64.RawURLEncoding.DecodeString(split[0])
	if err != nil {
		return nil, nil, err
	}
	err = json.Unmarshal(headerBytes, &header)
	if err != nil {
		return nil, nil, err
	}

	// check jwt type
	if header.Type != TokenType || header.Algorithm != Algorithm {
		return nil, nil, fmt.Errorf("unsupported jwt type")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(split[1])
	if err != nil {
		return nil, nil, err
	}

	var claims Claims
	err = json.Unmarshal(payloadBytes, &claims)
	if err != nil {
		return nil, nil, err
	}

	// check exp
	if claims.ExpirationTime == "" {
		return nil, nil, fmt.Errorf("jwt has no expiration time")
	}
	exp, err := strconv.ParseInt(claims.ExpirationTime, 10, 64)
	if err != nil {
		return nil, nil, err
	}
	if exp < now.Unix() {
		return nil, nil, fmt.Errorf("jwt is already expired")
	}

	// check signature
	signatureBytes, err := base64.RawURLEncoding.DecodeString(split[2])
	if err != nil {
		return nil, nil, err
	}

	if !rentchain.IsAddress(claims.Issuer) {
		return nil, nil, fmt.Errorf("issuer is not an address")
	}
	if header.KeyID != "" && !rentchain.SameAddress(header.KeyID, claims.Issuer) {
		return nil, nil, fmt.Errorf("key id does not match issuer")
	}

	signer, err := rentchain.RecoverAddress([]byte(split[0]+"."+split[1]), signatureBytes)
	if err != nil {
		return nil, nil, err
	}
	if !rentchain.SameAddress(signer, claims.Issuer) {
		return nil, nil, fmt.Errorf("signature mismatch: signed by %s, issuer is %s", signer, claims.Issuer)
	}
	// issuer is always the recovered signer, checksummed
	claims.Issuer = signer

	// all checks passed
	return &header, &claims, nil
}
