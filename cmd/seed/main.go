// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command seed loads the default RBAC catalog and the demo operator accounts.
//
// Every step is idempotent: roles, permissions and widgets are upserted by
// name, and accounts that already exist are left untouched.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/audit"
	"github.com/taibuivan/cpos/internal/platform/config"
	"github.com/taibuivan/cpos/internal/platform/constants"
	"github.com/taibuivan/cpos/internal/platform/migration"
	pgstore "github.com/taibuivan/cpos/internal/platform/postgres"
	"github.com/taibuivan/cpos/internal/platform/sec"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/internal/users/auth"
)

// demoAccount is one operator created by the seed.
type demoAccount struct {
	username string
	email    string
	fullName string
	role     string
}

var demoAccounts = []demoAccount{
	{"superadmin", "admin@cpos.local", "CPOS Super Admin", rbac.RoleSuperAdmin},
	{"productadmin", "product@cpos.local", "Product Admin", rbac.RoleProductAdmin},
	{"categoryadmin", "category@cpos.local", "Category Admin", rbac.RoleCategoryAdmin},
}

type options struct {
	reset    bool
	migrate  bool
	password string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Seed roles, permissions, widgets and demo accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).
				With(slog.String(constants.FieldApp, constants.AppName+"-seed"))

			if err := run(cmd.Context(), opts, log); err != nil {
				log.Error("seed_failed", slog.Any("error", err))
				return err
			}
			log.Info("seed_completed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.reset, "reset", false, "roll back every migration before seeding (destroys data)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "apply pending migrations before seeding")
	cmd.Flags().StringVar(&opts.password, "password", "Passw0rd!", "password given to every demo account")
	return cmd
}

func run(ctx context.Context, opts options, log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if opts.reset {
		log.Warn("resetting_database")
		if err := migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	if opts.migrate || opts.reset {
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	repository := rbac.NewPostgresRepository(pool)
	resolver := rbac.NewResolver(repository)
	rbacService := rbac.NewService(repository, resolver, audit.New(log), log)

	if err := rbacService.SeedCatalog(ctx, rbac.DefaultCatalog()); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Info("catalog_seeded")

	// The issuer is required by the auth service but no token is minted here.
	issuer, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        constants.AuthIssuer,
	})
	if err != nil {
		return err
	}

	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewLedger(auth.NewSessionRepository(pool)),
		resolver,
		repository,
		issuer,
		sec.NewPasswordHasher(cfg.BcryptCost),
		nil,
		log,
	)

	for _, account := range demoAccounts {
		_, err := authService.Register(ctx, auth.RegisterInput{
			Username: account.username,
			Email:    account.email,
			Password: opts.password,
			FullName: account.fullName,
			Roles:    []string{account.role},
		})

		switch {
		case err == nil:
			log.Info("account_seeded", slog.String("username", account.username), slog.String("role", account.role))
		case apperr.HasCode(err, apperr.CodeConflict):
			log.Info("account_exists", slog.String("username", account.username))
		default:
			return fmt.Errorf("seed account %s: %w", account.username, err)
		}
	}

	return nil
}
