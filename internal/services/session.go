package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/execudex-backend/internal/platform/ctxutil"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type JWTClaims struct {
	jwt.RegisteredClaims
}

// SessionService issues and verifies the HS256 bearer tokens whose subject is the user id.
type SessionService interface {
	IssueToken(userID uuid.UUID) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	// CurrentUserID reads the user placed on ctx by SetContextFromToken.
	CurrentUserID(ctx context.Context) (uuid.UUID, bool)
	GetAccessTTL() time.Duration
}

type sessionService struct {
	log       *logger.Logger
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewSessionService(log *logger.Logger, jwtSecretKey string, accessTTL time.Duration) SessionService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &sessionService{
		log:       log.With("service", "SessionService"),
		secret:    []byte(jwtSecretKey),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

func (s *sessionService) IssueToken(userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id required")
	}
	now := s.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *sessionService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return ctx, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: userID, TokenString: tokenString}), nil
}

func (s *sessionService) CurrentUserID(ctx context.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func (s *sessionService) GetAccessTTL() time.Duration { return s.accessTTL }
