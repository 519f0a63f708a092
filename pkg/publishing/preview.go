package publishing

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const previewIssuer = "wepublish-preview"

// PreviewSigner issues and verifies short-lived tokens granting public
// access to an item's draft.
type PreviewSigner struct {
	secret []byte
	clock  Clock
}

// NewPreviewSigner creates a signer using HS256 with secret. A nil clock
// uses RealClock.
func NewPreviewSigner(secret []byte, clock Clock) (*PreviewSigner, error) {
	if len(secret) == 0 {
		return nil, errors.New("preview secret is required")
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &PreviewSigner{secret: secret, clock: clock}, nil
}

// Sign returns a token for the item valid for ttl.
func (p *PreviewSigner) Sign(kind Kind, id uuid.UUID, ttl time.Duration) (string, error) {
	now := p.clock.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    previewIssuer,
		Subject:   id.String(),
		Audience:  jwt.ClaimStrings{string(kind)},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign preview token: %w", err)
	}
	return token, nil
}

// Verify checks the token was issued for kind and has not expired, and
// returns the item id it grants access to.
func (p *PreviewSigner) Verify(kind Kind, tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidPreviewToken
		}
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(string(kind)),
		jwt.WithIssuer(previewIssuer),
		jwt.WithTimeFunc(p.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: expired", ErrInvalidPreviewToken)
		}
		return uuid.Nil, ErrInvalidPreviewToken
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidPreviewToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidPreviewToken
	}
	return id, nil
}
