package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
)

// Claims carries the caller identity issued by the upstream login service.
// Subject holds the user id.
type Claims struct {
	Role           string `json:"role"`
	OrganizationID string `json:"org_id,omitempty"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTService signs and validates HS256 access tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

// GenerateAccessToken issues a token for actor. Production tokens come from
// the login service; this covers tests and local development.
func (s *JWTService) GenerateAccessToken(actor id.Actor, expiresIn time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Role:  actor.Role.String(),
		Name:  actor.Name,
		Email: actor.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	}
	if !actor.OrganizationID.IsNil() {
		claims.OrganizationID = actor.OrganizationID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Actor converts validated claims into the caller identity passed to services.
func (c *Claims) Actor() (id.Actor, error) {
	userID, err := id.ParseUserID(c.Subject)
	if err != nil {
		return id.Actor{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid subject claim")
	}
	role := id.Role(c.Role)
	if !role.IsValid() {
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid role claim")
	}

	actor := id.Actor{
		UserID: userID,
		Role:   role,
		Name:   c.Name,
		Email:  c.Email,
	}
	if c.OrganizationID != "" {
		orgID, err := id.ParseOrganizationID(c.OrganizationID)
		if err != nil {
			return id.Actor{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid org_id claim")
		}
		actor.OrganizationID = orgID
	}
	if role == id.RoleOrganization && actor.OrganizationID.IsNil() {
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "organization token missing org_id")
	}
	return actor, nil
}
