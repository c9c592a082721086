package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"parcel-dispatch-service/internal/adapters/repositories"
	"parcel-dispatch-service/internal/api"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/platform/db"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/services"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// main is the application composition root.
// It loads the scenario and the seed data, plays out the service day once
// and serves the results over HTTP.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	databaseURL := config.Get("DATABASE_URL", "")
	seedPath := config.Get("SEED_PATH", "data/seeds/service_day.json")
	scenarioPath := config.Get("SCENARIO_PATH", "config/scenario.yaml")
	port := config.Get("PORT", "8080")

	sc, err := config.LoadScenario(scenarioPath)
	if err != nil {
		log.Fatal(err)
	}
	day, err := sc.Day()
	if err != nil {
		log.Fatal(err)
	}

	conn, dialect, err := openStore(dbPath, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	// Initialize schema and seed the service day on startup.
	if err := initAndSeed(ctx, conn, dialect, seedPath); err != nil {
		log.Fatal(err)
	}

	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		log.Fatal(err)
	}

	runCtx := obs.WithRequestID(ctx, "")
	sim, err := services.BuildSimulation(
		runCtx,
		sc,
		repositories.NewLocationRepository(conn),
		repositories.NewPackageRepository(conn),
		collector,
	)
	if err != nil {
		log.Fatal(err)
	}

	report, err := sim.Run(runCtx)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf(
		"run_id=%s op=dispatch.done delivered=%d late=%d left=%d total_miles=%.1f rounds=%d",
		report.RunID, report.Delivered, len(report.Late), report.PackagesLeft, report.TotalMiles, report.Rounds,
	)

	router := api.NewRouter(sim, day, collector)

	log.Printf("Server listening addr=:%s store=%s", port, dialect)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openStore prefers Postgres when DATABASE_URL is set, else a SQLite file.
func openStore(dbPath, databaseURL string) (*sql.DB, repositories.Dialect, error) {
	if strings.TrimSpace(databaseURL) != "" {
		conn, err := db.Open(databaseURL)
		return conn, repositories.Postgres, err
	}
	conn, err := db.OpenSQLite(dbPath)
	return conn, repositories.SQLite, err
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect repositories.Dialect, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
