package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"hr-portal/pkg/config"
)

// SeedPlatform создаёт минимум, без которого портал не оживёт:
// платформенную учётку SUPER_ADMIN.
func SeedPlatform(db *pgxpool.Pool, cfg *config.Config) {
	ctx := context.Background()

	log.Println("🌱 Сидирование платформенных данных...")
	if err := seedSuperAdmin(ctx, db, cfg); err != nil {
		log.Fatalf("❌ Ошибка сидирования SUPER_ADMIN: %v", err)
	}
	log.Println("✅ Платформенные данные готовы")
}
