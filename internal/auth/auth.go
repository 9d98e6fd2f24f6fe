package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidCredentials возвращается для неизвестного или пустого токена
var ErrInvalidCredentials = errors.New("недействительный токен")

// Role представляет роль пользователя
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// Valid сообщает, известна ли роль
func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleRecruiter
}

// Identity представляет вызывающего пользователя
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// IsRecruiter сообщает, является ли пользователь рекрутером
func (i Identity) IsRecruiter() bool {
	return i.Role == RoleRecruiter
}

// Resolver превращает учетные данные в (userId, role)
type Resolver interface {
	Resolve(ctx context.Context, credential string) (Identity, error)
}

// TokenResolver хранит SHA-256 хеши токенов, а не сами токены
type TokenResolver struct {
	identities map[string]Identity // token hash -> identity
}

var _ Resolver = (*TokenResolver)(nil)

// NewTokenResolver создает резолвер по таблице token -> identity
func NewTokenResolver(tokens map[string]Identity) *TokenResolver {
	r := &TokenResolver{identities: make(map[string]Identity, len(tokens))}
	for token, id := range tokens {
		r.identities[HashToken(token)] = id
	}
	return r
}

func (r *TokenResolver) Resolve(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrInvalidCredentials
	}
	hash := HashToken(credential)
	for known, id := range r.identities {
		if subtle.ConstantTimeCompare([]byte(known), []byte(hash)) == 1 {
			return id, nil
		}
	}
	return Identity{}, ErrInvalidCredentials
}

// ExtractToken извлекает токен из заголовка Authorization (Bearer или без схемы)
func ExtractToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", fmt.Errorf("отсутствует заголовок Authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 1 {
		return parts[0], nil
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("неподдерживаемая схема авторизации %q", parts[0])
	}
	return strings.TrimSpace(parts[1]), nil
}

// HashToken возвращает SHA-256 хеш токена
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

type identityKey struct{}

// WithIdentity кладет пользователя в контекст
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext достает пользователя из контекста
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
