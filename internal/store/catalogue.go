package store

import (
	"fmt"
	"os"

	"github.com/arcadehub/gamehub/internal/model"
)

// CatalogueSnapshot is the on-disk shape of the game catalogue.
type CatalogueSnapshot struct {
	NextGameID int64         `json:"next_game_id"`
	Games      []model.Game  `json:"games"`
}

// LoadCatalogue reads the catalogue snapshot at path, returning an empty
// snapshot with NextGameID 1 if the file does not yet exist.
func LoadCatalogue(path string) (*CatalogueSnapshot, error) {
	var snap CatalogueSnapshot
	if err := LoadJSON(path, &snap); err != nil {
		if os.IsNotExist(err) {
			return &CatalogueSnapshot{NextGameID: 1}, nil
		}
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}
	if snap.NextGameID == 0 {
		snap.NextGameID = 1
	}
	return &snap, nil
}

// SaveCatalogue atomically persists the catalogue snapshot to path.
func SaveCatalogue(path string, snap *CatalogueSnapshot) error {
	if err := SaveJSON(path, snap); err != nil {
		return fmt.Errorf("saving catalogue: %w", err)
	}
	return nil
}
