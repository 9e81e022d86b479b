package seeders

import (
	"context"
	"log"
	"os"

	"hr-portal/internal/authz"
	"hr-portal/internal/entities"
	"hr-portal/pkg/config"
	"hr-portal/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedSuperAdmin(ctx context.Context, db *pgxpool.Pool, cfg *config.Config) error {
	log.Println("  - Создание пользователя SUPER_ADMIN...")

	email := os.Getenv("SUPER_ADMIN_EMAIL")
	if email == "" {
		email = "super.admin@localhost"
	}
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if password == "" {
		password = "Password123!"
		log.Println("    - SUPER_ADMIN_PASSWORD не задан, используется пароль по умолчанию. Смените его!")
	}

	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", utils.NormalizeEmail(email)).Scan(&exists); err != nil {
		return err
	}
	if exists {
		log.Println("    - SUPER_ADMIN уже существует. Пропускаем.")
		return nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (email, first_name, last_name, password, role, status, organization_id)
		VALUES ($1, $2, $3, $4, $5, $6, 0)`
	_, err = db.Exec(ctx, query,
		utils.NormalizeEmail(email), "Super", "Admin", hashedPassword,
		string(authz.RoleSuperAdmin), entities.UserStatusActive,
	)
	return err
}
