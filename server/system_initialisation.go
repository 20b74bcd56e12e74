package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/go-admin-auth/accounts"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"github.com/rs/zerolog/log"
)

const superAdminFullName = "System Administrator"

// InitialiseSystem creates the superadmin account on first start
func (s *Server) InitialiseSystem(ctx context.Context) error {
	count, err := s.repos.Accounts.CountSuperadmins(ctx)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to count superadmins: %w", err)
	}
	if count > 0 {
		return nil
	}

	login := s.config.GetSystemAdminLogin()
	generatedPassword, err := s.createSuperAdmin(ctx, login, s.config.GetSystemAdminPassword())
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap super admin: %w", err)
	}

	if generatedPassword != "" {
		log.Info().Msg("👤 Super Admin Credentials:")
		log.Info().Msgf("   Login:       %s", login)
		log.Info().Msgf("   Password:    %s     (⚠️ change it after the first login)", generatedPassword)
	}
	return nil
}

// createSuperAdmin returns the password only when it was generated here
func (s *Server) createSuperAdmin(ctx context.Context, login, password string) (generatedPassword string, err error) {
	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[server createSuperAdmin] failed to generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	} else if err := accounts.ValidatePasswordStrength(password); err != nil {
		log.Warn().Err(err).Msg("configured superadmin password is weak")
	}

	passwordHash, err := accounts.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("[server createSuperAdmin] failed to hash password: %w", err)
	}

	admin := &accounts.Account{
		Login:        login,
		FullName:     superAdminFullName,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsSuperadmin: true,
	}
	err = s.repos.Accounts.Create(ctx, admin)
	if apperrors.Is(err, apperrors.ErrAlreadyExist) {
		// the login is taken by an ordinary account; leave it alone
		log.Warn().Str("login", login).Msg("superadmin login already in use, no superadmin created")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("[server createSuperAdmin] failed to create super admin: %w", err)
	}
	return generatedPassword, nil
}
