package jwt

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/totegamma/rentchain"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func expiresIn(d time.Duration) string {
	return strconv.FormatInt(time.Now().Add(d).Unix(), 10)
}

// signRaw builds a token with an arbitrary header, signed by privatekey.
func signRaw(t *testing.T, header Header, claims Claims, privatekey string) string {
	t.Helper()
	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	target := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(claimsJSON)
	signature, err := rentchain.SignBytes([]byte(target), privatekey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return target + "." + base64.RawURLEncoding.EncodeToString(signature)
}

func TestCreateAndValidate(t *testing.T) {
	address, err := rentchain.PrivKeyToAddr(testKey)
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}

	now := time.Unix(1700000000, 0)
	token, err := Create(Claims{
		Subject:        rentchain.JWTSubject,
		Audience:       "rentchain.test",
		ExpirationTime: strconv.FormatInt(now.Add(time.Hour).Unix(), 10),
	}, testKey)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	header, claims, err := ValidateAt(token, now)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if header.Algorithm != Algorithm {
		t.Fatalf("unexpected algorithm %s", header.Algorithm)
	}
	if claims.Issuer != address {
		t.Fatalf("expected issuer %s got %s", address, claims.Issuer)
	}

	if _, _, err := ValidateAt(token, now.Add(2*time.Hour)); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestValidateRejectsForeignIssuer(t *testing.T) {
	_, other, err := rentchain.GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// signed by testKey but claiming to be someone else
	token, err := Create(Claims{Issuer: other, Subject: rentchain.JWTSubject, ExpirationTime: expiresIn(time.Hour)}, testKey)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := Validate(token); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}
}

func TestValidateRejectsTampering(t *testing.T) {
	token, err := Create(Claims{Subject: rentchain.JWTSubject, Audience: "a", ExpirationTime: expiresIn(time.Hour)}, testKey)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	split := strings.Split(token, ".")
	forged, err := Create(Claims{Subject: rentchain.JWTSubject, Audience: "b", ExpirationTime: expiresIn(time.Hour)}, testKey)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// payload of one token with the signature of another
	mixed := split[0] + "." + strings.Split(forged, ".")[1] + "." + split[2]
	if _, _, err := Validate(mixed); err == nil {
		t.Fatalf("expected tampered token to fail")
	}

	if _, _, err := Validate("a.b"); err == nil {
		t.Fatalf("expected malformed token to fail")
	}
}

func TestValidateRejectsKeyIDOtherThanIssuer(t *testing.T) {
	attackerKey, attacker, err := rentchain.GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	victim, err := rentchain.PrivKeyToAddr(testKey)
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}

	// kid names the real signer, iss names someone else
	token := signRaw(t,
		Header{Type: TokenType, Algorithm: Algorithm, KeyID: attacker},
		Claims{Issuer: victim, Subject: rentchain.JWTSubject, ExpirationTime: expiresIn(time.Hour)},
		attackerKey,
	)
	if _, _, err := Validate(token); err == nil {
		t.Fatalf("token signed by %s was accepted as %s", attacker, victim)
	}

	// same lie without kid
	token = signRaw(t,
		Header{Type: TokenType, Algorithm: Algorithm},
		Claims{Issuer: victim, Subject: rentchain.JWTSubject, ExpirationTime: expiresIn(time.Hour)},
		attackerKey,
	)
	if _, _, err := Validate(token); err == nil {
		t.Fatalf("token signed by %s was accepted as %s", attacker, victim)
	}
}

func TestValidateAcceptsMatchingKeyID(t *testing.T) {
	key, address, err := rentchain.GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	lower := strings.ToLower(address)

	token := signRaw(t,
		Header{Type: TokenType, Algorithm: Algorithm, KeyID: lower},
		Claims{Issuer: lower, Subject: rentchain.JWTSubject, ExpirationTime: expiresIn(time.Hour)},
		key,
	)
	_, claims, err := Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Issuer != address {
		t.Fatalf("expected checksummed signer %s, got %s", address, claims.Issuer)
	}
}

func TestValidateRequiresExpiration(t *testing.T) {
	token, err := Create(Claims{Subject: rentchain.JWTSubject, Audience: "rentchain.test"}, testKey)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := ValidateAt(token, time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Fatalf("expected token without exp to be rejected")
	}
	if _, _, err := ValidateAt(token, time.Unix(0, 0)); err == nil {
		t.Fatalf("expected token without exp to be rejected at any time")
	}
}
