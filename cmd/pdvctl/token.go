package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/pdv-backend/pkg/auth"
	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
)

type tokenFlags struct {
	operator string
	name     string
	role     string
	secret   string
	issuer   string
	ttl      time.Duration
}

// newTokenCmd mints operator tokens for local terminals and smoke tests. The
// signing settings come from PDV_JWT_* unless overridden by flags.
func newTokenCmd() *cobra.Command {
	var flags tokenFlags
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := mintToken(flags, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.operator, "operator", "", "operator id carried in the token")
	cmd.Flags().StringVar(&flags.name, "name", "", "operator display name")
	cmd.Flags().StringVar(&flags.role, "role", string(enums.OperatorRoleCashier), "operator role")
	cmd.Flags().StringVar(&flags.secret, "secret", "", "signing secret (defaults to "+config.EnvJWTSecret+")")
	cmd.Flags().StringVar(&flags.issuer, "issuer", "", "issuer (defaults to "+config.EnvJWTIssuer+")")
	cmd.Flags().DurationVar(&flags.ttl, "ttl", 0, "token lifetime (defaults to "+config.EnvJWTExpMins+")")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

func mintToken(flags tokenFlags, now time.Time) (string, error) {
	role, err := enums.ParseOperatorRole(flags.role)
	if err != nil {
		return "", err
	}
	operator := strings.TrimSpace(flags.operator)
	if operator == "" {
		return "", fmt.Errorf("operator is required")
	}

	var cfg config.JWTConfig
	if flags.secret == "" || flags.issuer == "" {
		if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil && flags.secret == "" {
			return "", fmt.Errorf("loading jwt config: %w", err)
		}
	}
	if flags.secret != "" {
		cfg.Secret = flags.secret
	}
	if flags.issuer != "" {
		cfg.Issuer = flags.issuer
	}
	if flags.ttl > 0 {
		cfg.ExpirationMinutes = int(flags.ttl / time.Minute)
	}
	if cfg.ExpirationMinutes <= 0 {
		cfg.ExpirationMinutes = 60
	}

	return auth.MintAccessToken(cfg, now, auth.AccessTokenPayload{
		OperatorID: operator,
		Name:       flags.name,
		Role:       role,
	})
}
