package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"pharmapos/m/internal/api"
	"pharmapos/m/internal/config"
	"pharmapos/m/internal/database"
	"pharmapos/m/internal/migrations"
	"pharmapos/m/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	if cfg.CatalogCSV != "" {
		seed.LoadCatalog(db, cfg.CatalogCSV)
	}

	handler := api.New(db, cfg.Secret)
	addr := ":" + cfg.HTTPPort
	log.Printf("pharmacy server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler.Router()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
