package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/models"
)

type schoolSeed struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	Province string `json:"province"`
}

type schoolsFile struct {
	Schools []schoolSeed `json:"schools"`
}

// SeedSchools upserts the school reference list from a JSON file shaped
// {"schools":[{"name","city","province"}]}. A missing file is not an error.
func SeedSchools(db *gorm.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schools seed: %w", err)
	}

	var file schoolsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse schools seed: %w", err)
	}

	seeded := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, s := range file.Schools {
			name := strings.TrimSpace(s.Name)
			if name == "" {
				continue
			}
			var existing models.School
			err := tx.Where("name = ?", name).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				school := models.School{
					ID:       uuid.New(),
					Name:     name,
					City:     strings.TrimSpace(s.City),
					Province: strings.TrimSpace(s.Province),
				}
				if err := tx.Create(&school).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := tx.Model(&existing).Updates(map[string]interface{}{
					"city":     strings.TrimSpace(s.City),
					"province": strings.TrimSpace(s.Province),
				}).Error; err != nil {
					return err
				}
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed schools: %w", err)
	}
	return seeded, nil
}
