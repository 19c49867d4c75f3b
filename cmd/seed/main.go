package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/veo1/catalog-api/app/config"
	"github.com/veo1/catalog-api/app/logger"
)

// seed runs every .sql file of a directory, in name order, against Postgres.
func main() {
	dir := flag.String("dir", "sql", "directory holding the .sql files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg.Database.DSN(), *dir, log); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Info("seed completed")
}

func run(dsn, dir string, log logrus.FieldLogger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("exec %s: %w", file, err)
		}
		log.WithField("file", filepath.Base(file)).Info("sql file applied")
	}
	return nil
}
