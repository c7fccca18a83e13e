package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bookend/catalog/internal/database"
	"github.com/bookend/catalog/internal/logging"
)

var seedOwner string

// sampleData mirrors a small demo catalog: a few categories each holding a
// few items, in creation order so the latest-items listing has something to
// show.
var sampleData = []struct {
	category string
	items    [][2]string
}{
	{"Big things", [][2]string{
		{"Elephant", "A gray pachyderm."},
		{"House", "Where I live."},
		{"Moon", "Where I want to go."},
	}},
	{"Small things", [][2]string{
		{"Mouse", "A gray rodent."},
		{"Another mouse", "A brown rodent."},
		{"Speck of dust", "You really should clean up."},
	}},
	{"Red things", [][2]string{
		{"Rubber ball", "Very bouncy."},
		{"Porsche 911", "Vroom!"},
		{"Fly agaric", "Eat at your own risk."},
	}},
	{"Blue things", [][2]string{
		{"Parrot", "It's dead (obviously)."},
		{"Ocean", "So blue!"},
	}},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logging.Apply(verbosity, &cfg.Log, logging.FilePathForDB(cfg.Database.Path))

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	owner, err := db.FindOrCreateUser(seedOwner)
	if err != nil {
		return err
	}

	for _, group := range sampleData {
		category, err := db.CreateCategory(group.category, owner.ID)
		if err != nil {
			return fmt.Errorf("failed to create category %q: %w", group.category, err)
		}
		for _, entry := range group.items {
			if _, err := db.CreateItem(entry[0], entry[1], category.ID, owner.ID); err != nil {
				return fmt.Errorf("failed to create item %q: %w", entry[0], err)
			}
		}
		log.Info().Str("category", group.category).Int("items", len(group.items)).Msg("Seeded category")
	}

	log.Info().Str("owner", seedOwner).Msg("Sample content created")
	return nil
}
