package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

func main() {
	dir := flag.String("path", "migrations", "migrations directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	absPath, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal(err)
	}
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		log.Fatalf("Migrations directory not found: %s", absPath)
	}

	m, err := migrate.New("file://"+absPath, dbUrl)
	if err != nil {
		log.Fatal(err)
	}

	cmd := "up"
	if args := flag.Args(); len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatal(err)
		}
		log.Println("Migration up successful")
	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatal(err)
		}
		log.Println("Migration down successful")
	case "force":
		if len(flag.Args()) < 2 {
			log.Fatal("force requires a version")
		}
		version, err := strconv.Atoi(flag.Args()[1])
		if err != nil {
			log.Fatalf("Invalid version %q: %v", flag.Args()[1], err)
		}
		if err := m.Force(version); err != nil {
			log.Fatal(err)
		}
		log.Printf("Forced migration version to %d", version)
	default:
		log.Fatalf("Unknown command %q (want up, down or force)", cmd)
	}
}
