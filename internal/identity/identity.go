// Package identity issues and verifies session credentials and resolves the
// principal and role attached to a request.
package identity

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/beanie/internal/models"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "beanie_session"

// Principal is the authenticated identity associated with a request.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// Credential is a signed session token together with its expiry, ready to
// be written onto a response cookie.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

const (
	audienceSession  = "session"
	audienceExchange = "exchange"
)

// Service validates tokens against the signing secret, never trusting
// locally-decoded claims, and resolves roles from the profiles table.
type Service struct {
	db            *gorm.DB
	secret        string
	ttl           time.Duration
	refreshWindow time.Duration
}

// NewService constructs an identity service. Tokens live for ttl and are
// re-issued during resolution once less than refreshWindow remains.
func NewService(db *gorm.DB, secret string, ttl, refreshWindow time.Duration) *Service {
	return &Service{db: db, secret: secret, ttl: ttl, refreshWindow: refreshWindow}
}

// Issue signs a fresh session credential for the given user.
func (s *Service) Issue(userID uuid.UUID, email string) (Credential, error) {
	expiresAt := time.Now().Add(s.ttl)
	claims := &sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{audienceSession},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return Credential{}, err
	}
	return Credential{Token: token, ExpiresAt: expiresAt}, nil
}

// Resolve verifies the session token and returns the principal, its role,
// and a refreshed credential when the token is close to expiry. A missing,
// expired or forged token resolves to an anonymous principal with the
// customer role; a missing or unreadable profile row also defaults the role
// to customer (least privilege) rather than failing the request.
func (s *Service) Resolve(token string) (*Principal, models.Role, *Credential) {
	if token == "" {
		return nil, models.RoleCustomer, nil
	}

	claims, err := s.verify(token, audienceSession)
	if err != nil {
		return nil, models.RoleCustomer, nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, models.RoleCustomer, nil
	}

	principal := &Principal{ID: userID, Email: claims.Email}
	role := s.lookupRole(userID)

	var refreshed *Credential
	if time.Until(claims.ExpiresAt.Time) < s.refreshWindow {
		if cred, err := s.Issue(userID, claims.Email); err == nil {
			refreshed = &cred
		} else {
			log.Printf("[Identity] session refresh failed for %s: %v", userID, err)
		}
	}

	return principal, role, refreshed
}

func (s *Service) lookupRole(userID uuid.UUID) models.Role {
	var profile models.Profile
	err := s.db.Select("role").First(&profile, "id = ?", userID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Identity] profile lookup failed for %s: %v", userID, err)
		}
		return models.RoleCustomer
	}
	if !profile.Role.Valid() {
		return models.RoleCustomer
	}
	return profile.Role
}

// IssueExchangeCode signs a short-lived code for the auth callback route,
// standing in for the identity provider's code grant.
func (s *Service) IssueExchangeCode(userID uuid.UUID, email string) (string, error) {
	claims := &sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{audienceExchange},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}

// ExchangeCode validates a callback code and returns the user it was issued
// for. Session tokens are not accepted here and exchange codes are not
// accepted as sessions.
func (s *Service) ExchangeCode(code string) (uuid.UUID, string, error) {
	claims, err := s.verify(code, audienceExchange)
	if err != nil {
		return uuid.Nil, "", err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", err
	}
	return userID, claims.Email, nil
}

func (s *Service) verify(token, audience string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	}, jwt.WithAudience(audience))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ApplyCookie writes the credential onto the response. Every response built
// after a refresh, redirects included, must carry it.
func ApplyCookie(c *fiber.Ctx, cred Credential) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    cred.Token,
		Expires:  cred.ExpiresAt,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
