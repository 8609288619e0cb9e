// Package auth emite tokens JWT para usuarios de un directorio configurado
// (AUTH_USERS). No persiste usuarios: la gestión de cuentas es externa.
package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/agro-trazabilidad-api/internal/domain"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// User credencial del directorio.
type User struct {
	Username     string
	Role         string
	PasswordHash string // bcrypt
}

// ParseUsers lee "usuario:rol:hash,usuario:rol:hash". Vacío = sin usuarios (login deshabilitado).
func ParseUsers(raw string) ([]User, error) {
	var users []User
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("AUTH_USERS: entrada inválida %q (usuario:rol:hash)", entry)
		}
		switch parts[1] {
		case jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleAuditor:
		default:
			return nil, fmt.Errorf("AUTH_USERS: rol desconocido %q para %s", parts[1], parts[0])
		}
		if _, err := bcrypt.Cost([]byte(parts[2])); err != nil {
			return nil, fmt.Errorf("AUTH_USERS: hash bcrypt inválido para %s: %w", parts[0], err)
		}
		users = append(users, User{Username: parts[0], Role: parts[1], PasswordHash: parts[2]})
	}
	return users, nil
}

// HashPassword genera el hash bcrypt para una entrada de AUTH_USERS.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AuthUseCase casos de uso de autenticación: login.
type AuthUseCase struct {
	users  map[string]User
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users []User, jwtCfg JWTConfig) *AuthUseCase {
	m := make(map[string]User, len(users))
	for _, u := range users {
		m[u.Username] = u
	}
	return &AuthUseCase{users: m, jwtCfg: jwtCfg}
}

// Login verifica usuario/password y genera el JWT. Credenciales inválidas = domain.ErrUnauthorized.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, ok := uc.users[in.Username]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.Issue(user.Username, user.Role)
}

// Issue emite un token sin verificar credenciales (uso operativo desde batchctl).
func (uc *AuthUseCase) Issue(username, role string) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, username, role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
		Username:  username,
		Role:      role,
	}, nil
}
