package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/internal/clock"
	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/jwt"
)

var tracer = otel.Tracer("auth")

type AuthService struct {
	config domain.Config
	clock  clock.Clock
}

func NewAuthService(
	config domain.Config,
	clock clock.Clock,
) *AuthService {
	return &AuthService{
		config: config,
		clock:  clock,
	}
}

type AuthResult struct {
	Address string
}

// AuthJwt validates a wallet-signed token and returns the address recovered from its signature.
func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	_, claims, err := jwt.ValidateAt(token, s.clock.Now())
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	if claims.Audience != s.config.FQDN {
		err := fmt.Errorf("jwt audience mismatch: expected %s, got %s", s.config.FQDN, claims.Audience)
		span.RecordError(err)
		return nil, err
	}

	if claims.Subject != rentchain.JWTSubject {
		err := fmt.Errorf("invalid subject")
		span.RecordError(err)
		return nil, err
	}

	address, err := rentchain.NormalizeAddress(claims.Issuer)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("invalid issuer")
	}

	return &AuthResult{Address: address}, nil
}
