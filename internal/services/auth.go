package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/platform/ctxutil"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

// AuthService verifies bearer tokens minted upstream and binds the caller to the context.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	// MintToken signs a token for an actor. Used by local tooling and tests.
	MintToken(actor identity.Actor, ttl time.Duration) (string, error)
}

type JWTClaims struct {
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	issuer       string
}

func NewAuthService(log *logger.Logger, jwtSecretKey, issuer string) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		log:          serviceLog,
		jwtSecretKey: jwtSecretKey,
		issuer:       strings.TrimSpace(issuer),
	}
}

func (as *authService) MintToken(actor identity.Actor, ttl time.Duration) (string, error) {
	if actor.ID == uuid.Nil {
		return "", fmt.Errorf("missing actor id")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := &JWTClaims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			Issuer:    as.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if actor.CompanyID != uuid.Nil {
		claims.CompanyID = actor.CompanyID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if as.issuer != "" {
		opts = append(opts, jwt.WithIssuer(as.issuer))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, opts...)
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	role, ok := identity.ParseRole(claims.Role)
	if !ok || role == identity.RoleSystem {
		return ctx, fmt.Errorf("invalid role in token: %q", claims.Role)
	}
	actor := identity.Actor{ID: userID, Role: role}
	if raw := strings.TrimSpace(claims.CompanyID); raw != "" {
		companyID, err := uuid.Parse(raw)
		if err != nil {
			return ctx, fmt.Errorf("invalid company id in token: %w", err)
		}
		actor.CompanyID = companyID
	}
	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		Actor:       actor,
	})
	return ctx, nil
}
