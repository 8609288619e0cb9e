package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/agro-trazabilidad-api/internal/application/auth"
	"github.com/jhoicas/agro-trazabilidad-api/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	var (
		user string
		role string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT firmado con JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET es requerido")
			}
			switch role {
			case jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleAuditor:
			default:
				return fmt.Errorf("rol desconocido %q (admin, operador, auditor)", role)
			}
			uc := auth.NewAuthUseCase(nil, auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer})
			out, err := uc.Issue(user, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "usuario (required)")
	cmd.Flags().StringVar(&role, "role", jwt.RoleOperator, "rol: admin, operador o auditor")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Genera el hash bcrypt para AUTH_USERS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
