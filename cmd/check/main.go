package main

import (
	"context"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"schemawatch/internal/config"
	"schemawatch/internal/database"
	"schemawatch/internal/report"
	"schemawatch/internal/repository/postgres"
	"schemawatch/internal/service"
)

// cmd/check runs one sequential pass over the configured tables and prints
// the result to stdout. Individual probe failures are reported per line and
// do not affect the exit code; only a failed database connection exits
// nonzero.
func main() {
	cfg := config.Load()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	schemaRepo := postgres.NewSchemaPostgres(db)
	svc := service.NewInspectionService(schemaRepo, nil, nil, cfg.Check, nil)

	p := report.NewPrinter(os.Stdout)
	p.PrintHeader(cfg.Check.Schema, cfg.Check.Tables)

	results, err := svc.Inspect(context.Background())
	for _, r := range results {
		p.PrintResult(r)
	}
	if err != nil {
		log.Fatalf("check aborted: %v", err)
	}
	p.PrintSummary(results)
}
