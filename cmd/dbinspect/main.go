// Package main provides a read-only inspection tool for the movie database.
//
// Usage:
//
//	DB_PATH=~/libresine/db go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/libresine/libresine-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/libresine/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	movieCount := 0
	favoriteCount := 0
	legacyFavorites := 0
	byGenre := map[string]int{}

	err = db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		it := txn.NewIterator(itOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			switch {
			case strings.HasPrefix(key, "movie:"):
				movieCount++
				err := item.Value(func(val []byte) error {
					var movie domain.Movie
					if err := json.Unmarshal(val, &movie); err != nil {
						fmt.Printf("  ! unreadable movie at %s: %v\n", key, err)
						return nil
					}
					for _, g := range movie.Genres {
						byGenre[g]++
					}
					return nil
				})
				if err != nil {
					return err
				}
			case strings.HasPrefix(key, "favorite:"):
				favoriteCount++
			case key == "legacy:favorites":
				legacyFavorites++
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}

	fmt.Printf("Movies:    %d\n", movieCount)
	fmt.Printf("Favorites: %d\n", favoriteCount)
	if legacyFavorites > 0 {
		fmt.Println("Legacy favorites record present (will migrate on next favorites read)")
	}

	if len(byGenre) > 0 {
		fmt.Println()
		fmt.Println("Movies per genre:")
		for genre, count := range byGenre {
			fmt.Printf("  %-20s %d\n", genre, count)
		}
	}
}
