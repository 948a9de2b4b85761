// Seeds the predefined round catalog, RBAC roles and permissions, and a
// default admin account. Safe to re-run: every statement upserts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/equiseed/equiseed/internal/app"
	"github.com/equiseed/equiseed/internal/rbac"
)

var predefinedRounds = []struct {
	Name     string
	Sequence int
}{
	{"Pre-Seed", 1},
	{"Seed", 2},
	{"Post-Seed", 3},
	{"Bridging", 4},
	{"Family & Friend", 5},
	{"Pre-Series A", 6},
	{"Series A", 7},
	{"Post-Series A", 8},
	{"Pre-Series B", 9},
	{"Open Market", 10},
}

var rolePermissions = map[string][]string{
	rbac.RoleFounder: {
		rbac.PermFundingView,
		rbac.PermFundingEdit,
		rbac.PermFundingInvest,
		rbac.PermProfileView,
	},
	rbac.RoleAdmin: {
		rbac.PermFundingView,
		rbac.PermFundingReview,
		rbac.PermProfileView,
	},
}

func main() {
	ctx := context.Background()
	logger := slog.Default()

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := run(ctx, pool); err != nil {
		logger.Error("seed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seed completed")
}

func run(ctx context.Context, pool *pgxpool.Pool) error {
	for _, round := range predefinedRounds {
		if _, err := pool.Exec(ctx, `
			INSERT INTO predefined_rounds (name, sequence)
			VALUES ($1, $2)
			ON CONFLICT (sequence) DO UPDATE SET name = EXCLUDED.name`,
			round.Name, round.Sequence); err != nil {
			return fmt.Errorf("seed predefined round %q: %w", round.Name, err)
		}
	}

	for role, perms := range rolePermissions {
		var roleID int64
		if err := pool.QueryRow(ctx, `
			INSERT INTO roles (name, created_at, updated_at)
			VALUES ($1, NOW(), NOW())
			ON CONFLICT (name) DO UPDATE SET updated_at = NOW()
			RETURNING id`, role).Scan(&roleID); err != nil {
			return fmt.Errorf("seed role %q: %w", role, err)
		}
		for _, perm := range perms {
			var permID int64
			if err := pool.QueryRow(ctx, `
				INSERT INTO permissions (name)
				VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`, perm).Scan(&permID); err != nil {
				return fmt.Errorf("seed permission %q: %w", perm, err)
			}
			if _, err := pool.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, roleID, permID); err != nil {
				return fmt.Errorf("link %q to %q: %w", perm, role, err)
			}
		}
	}

	return seedAdmin(ctx, pool)
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var userID int64
	if err := pool.QueryRow(ctx, `
		INSERT INTO users (email, name, company_name, password_hash, is_active, created_at, updated_at)
		VALUES ($1, 'Administrator', 'EQUISEED', $2, TRUE, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`, email, string(hash)).Scan(&userID); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT DO NOTHING`, userID, rbac.RoleAdmin); err != nil {
		return fmt.Errorf("grant admin role: %w", err)
	}
	return nil
}
