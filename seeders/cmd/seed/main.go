package main

import (
	"flag"
	"log"

	"hr-portal/pkg/config"
	"hr-portal/pkg/database/postgresql"
	"hr-portal/seeders"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded.")
	}

	runPlatform := flag.Bool("platform", false, "Создать платформенную учётку SUPER_ADMIN")
	runAll := flag.Bool("all", false, "Запустить все сидеры")
	flag.Parse()

	if !*runPlatform && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		flag.PrintDefaults()
		return
	}

	cfg := config.New()
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	if *runAll || *runPlatform {
		seeders.SeedPlatform(dbPool, cfg)
	}
}
