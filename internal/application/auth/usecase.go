// Package auth emite tokens para actores ya registrados en el maestro de usuarios.
package auth

import (
	"context"

	"github.com/jhoicas/control-stock/internal/domain"
	"github.com/jhoicas/control-stock/internal/domain/repository"
	"github.com/jhoicas/control-stock/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// userStatusActive es el único estado que puede recibir token.
const userStatusActive = "active"

// AuthUseCase emite tokens firmados con el rol vigente del usuario.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// IssueToken genera un JWT para userID con su rol actual y la sucursal indicada.
// ErrNotFound si el usuario no existe; ErrForbidden si no está activo.
func (uc *AuthUseCase) IssueToken(ctx context.Context, userID, branchID string) (string, error) {
	if userID == "" {
		return "", domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrNotFound
	}
	if user.Status != userStatusActive {
		return "", domain.ErrForbidden
	}
	return jwt.Generate(uc.jwtCfg.Secret, user.ID, branchID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
}
