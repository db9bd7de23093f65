package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"gorm.io/gorm/clause"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/database"
	"github.com/plateful/backend/internal/models"
)

type ingredientFixture struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Bulk-loads the ingredient reference data from a JSON fixture file.
// Re-running is safe: existing (name, unit) pairs are left untouched.
func main() {
	filePath := flag.String("file", "data/ingredients.json", "path to the ingredients JSON file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *filePath, err)
	}

	var fixtures []ingredientFixture
	if err := json.Unmarshal(content, &fixtures); err != nil {
		log.Fatalf("Failed to parse %s: %v", *filePath, err)
	}

	ingredients := make([]models.Ingredient, len(fixtures))
	for i, f := range fixtures {
		ingredients[i] = models.Ingredient{
			Name:            f.Name,
			MeasurementUnit: f.MeasurementUnit,
		}
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(ingredients, 500)
	if result.Error != nil {
		log.Fatalf("Failed to load ingredients: %v", result.Error)
	}
	log.Printf("Loaded %d ingredients (%d new)", len(ingredients), result.RowsAffected)
}
