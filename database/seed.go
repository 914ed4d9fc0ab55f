package database

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

//go:embed seed/menu.json
var defaultMenu []byte

// SeedMenu fills an empty menu table from path, or from the embedded seed
// when path is empty. The table stays the only source the API reads from.
func SeedMenu(db *gorm.DB, path string) error {
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count menu items: %w", err)
	}
	if count > 0 {
		return nil
	}

	raw := defaultMenu
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read menu seed: %w", err)
		}
		raw = b
	}

	items, err := ParseMenuSeed(raw)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	if err := db.Create(&items).Error; err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	utils.InfoLogger.Printf("Seeded %d menu items", len(items))
	return nil
}

// ParseMenuSeed decodes a menu seed document: a JSON array of menu items.
// Items without an explicit availability flag are available.
func ParseMenuSeed(raw []byte) ([]models.MenuItem, error) {
	var entries []struct {
		models.MenuItem
		IsAvailable *bool `json:"isAvailable"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode menu seed: %w", err)
	}

	items := make([]models.MenuItem, 0, len(entries))
	for _, e := range entries {
		item := e.MenuItem
		item.IsAvailable = e.IsAvailable == nil || *e.IsAvailable
		items = append(items, item)
	}
	return items, nil
}

// EnsureAdmin creates the bootstrap admin, or promotes an existing account
// with that email.
func EnsureAdmin(db *gorm.DB, name, email, password string) error {
	var user models.User
	err := db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	switch {
	case err == nil:
		if user.Role == models.RoleAdmin {
			return nil
		}
		user.Role = models.RoleAdmin
		return db.Save(&user).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	utils.InfoLogger.Printf("Bootstrap admin created: %s", admin.Email)
	return nil
}
