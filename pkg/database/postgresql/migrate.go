package postgresql

import (
	"io/fs"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate применяет goose-миграции поверх существующего пула.
// Через stdlib-адаптер pgx, чтобы не держать второе подключение.
func Migrate(pool *pgxpool.Pool, migrations fs.FS) {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Ошибка выбора диалекта миграций: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		log.Fatalf("Ошибка применения миграций: %v", err)
	}
	log.Println("✅ Миграции применены")
}
