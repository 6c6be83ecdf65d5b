package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
	"github.com/pageza/foodgram/backend/migrations"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// catalog is the part of the catalog service the importer needs
type catalog interface {
	GetOrCreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error)
	GetOrCreateTag(ctx context.Context, name, color, slug string) (*models.Tag, bool, error)
}

// importStats counts what one run created and what already existed
type importStats struct {
	IngredientsCreated int
	IngredientsExisted int
	TagsCreated        int
	TagsExisted        int
}

func main() {
	dataDir := flag.String("data", "../data", "Directory holding ingredients.json and tags.json")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, migrations.FS); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	logging.Info().Str("dir", *dataDir).Msg("starting import")
	stats, err := importData(context.Background(), service.NewCatalogService(db), *dataDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("import failed")
	}
	logging.Info().
		Int("ingredients_created", stats.IngredientsCreated).
		Int("ingredients_existing", stats.IngredientsExisted).
		Int("tags_created", stats.TagsCreated).
		Int("tags_existing", stats.TagsExisted).
		Msg("import finished")
}

// importData loads dir/ingredients.json and dir/tags.json. Records that
// already exist are left untouched, so the import can be rerun.
func importData(ctx context.Context, cat catalog, dir string) (importStats, error) {
	var stats importStats

	var ingredients []ingredientRecord
	if err := readJSON(filepath.Join(dir, "ingredients.json"), &ingredients); err != nil {
		return stats, err
	}
	for i, rec := range ingredients {
		_, created, err := cat.GetOrCreateIngredient(ctx, rec.Name, rec.MeasurementUnit)
		if err != nil {
			return stats, fmt.Errorf("ingredient #%d (%q): %w", i, rec.Name, err)
		}
		if created {
			stats.IngredientsCreated++
		} else {
			stats.IngredientsExisted++
		}
	}

	var tags []types.CreateTagRequest
	if err := readJSON(filepath.Join(dir, "tags.json"), &tags); err != nil {
		return stats, err
	}
	for i := range tags {
		tag := &tags[i]
		if err := validation.ValidateStruct(tag); err != nil {
			return stats, fmt.Errorf("tag #%d (%q): %w", i, tag.Slug, err)
		}
		_, created, err := cat.GetOrCreateTag(ctx, tag.Name, tag.Color, tag.Slug)
		if err != nil {
			return stats, fmt.Errorf("tag #%d (%q): %w", i, tag.Slug, err)
		}
		if created {
			stats.TagsCreated++
		} else {
			stats.TagsExisted++
		}
	}

	return stats, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
