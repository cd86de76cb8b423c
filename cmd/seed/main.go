// Package main provides a tool to seed the movie database from a JSON file.
//
// The file goes through the same validation as an API import, so anything
// this tool accepts the server would accept too. Duplicates already in the
// database are skipped.
//
// Usage:
//
//	DB_PATH=~/libresine/db go run ./cmd/seed movies.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/libresine/libresine-server/internal/importer"
	"github.com/libresine/libresine-server/internal/store"
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: seed <movies.json>")
		os.Exit(2)
	}
	file := flag.Arg(0)

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/libresine/db")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", file, err)
	}

	validation := importer.ValidateFile(filepath.Base(file), "", data)
	if !validation.Valid {
		fmt.Fprintln(os.Stderr, "File failed validation:")
		for _, msg := range validation.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", msg)
		}
		os.Exit(1)
	}

	st, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	imported, err := st.BulkImportMovies(context.Background(), validation.Movies)
	if err != nil {
		if errors.Is(err, store.ErrEmptyImport) {
			fmt.Println("Nothing to import: every movie already exists.")
			return
		}
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Imported %d of %d movies into %s\n", len(imported), len(validation.Movies), dbPath)
}
