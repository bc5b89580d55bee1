package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const migrationsTable = "schema_migrations_arcade"

// RunMigrations applies the SQL files in dir using the postgres driver. A
// database that already has the arcade schema but no migrate metadata is
// baselined to the newest file first.
func RunMigrations(databaseURL, dir string) error {
	if databaseURL == "" {
		return errors.New("database URL is empty")
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open DB: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pg.WithInstance(sqlDB, &pg.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if needsBaseline(sqlDB) {
		if latest := findLatestMigrationVersion(dir); latest > 0 {
			log.Warn().Str("component", "migrate").Int64("version", latest).Msg("baselining existing schema")
			if ferr := m.Force(int(latest)); ferr != nil {
				log.Error().Str("component", "migrate").Err(ferr).Int64("version", latest).Msg("force version failed")
			}
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", verr)
	}
	log.Info().Str("component", "migrate").Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	return nil
}

// needsBaseline reports whether game_state exists without migrate metadata.
func needsBaseline(db *sql.DB) bool {
	var schemaExists bool
	row := db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name='game_state')")
	if err := row.Scan(&schemaExists); err != nil || !schemaExists {
		return false
	}
	var metaExists bool
	row = db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", migrationsTable)
	if err := row.Scan(&metaExists); err != nil {
		return false
	}
	return !metaExists
}

// findLatestMigrationVersion scans dir for files that start with a numeric
// version prefix (e.g. 000001_) and returns the highest version number.
func findLatestMigrationVersion(dir string) int64 {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	re := regexp.MustCompile(`^0*([0-9]+)_`)
	var max int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(f.Name())
		if len(m) < 2 {
			continue
		}
		v, _ := strconv.ParseInt(m[1], 10, 64)
		if v > max {
			max = v
		}
	}

	return max
}
