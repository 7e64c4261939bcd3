package store

import (
	"fmt"
	"os"

	"github.com/arcadehub/gamehub/internal/model"
)

// UsersSnapshot is the on-disk shape of the registered account list.
type UsersSnapshot struct {
	Users []model.User `json:"users"`
}

// LoadUsers reads the users snapshot at path, returning an empty snapshot
// if the file does not yet exist.
func LoadUsers(path string) (*UsersSnapshot, error) {
	var snap UsersSnapshot
	if err := LoadJSON(path, &snap); err != nil {
		if os.IsNotExist(err) {
			return &UsersSnapshot{}, nil
		}
		return nil, fmt.Errorf("loading users: %w", err)
	}
	return &snap, nil
}

// SaveUsers atomically persists the users snapshot to path.
func SaveUsers(path string, snap *UsersSnapshot) error {
	if err := SaveJSON(path, snap); err != nil {
		return fmt.Errorf("saving users: %w", err)
	}
	return nil
}
