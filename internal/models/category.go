package models

import "strings"

// PredefinedCategories are shared by every user and never stored.
var PredefinedCategories = []string{"Food", "Travel", "Utilities", "Shopping"}

// IsPredefinedCategory reports whether name matches a predefined category,
// ignoring case and surrounding whitespace.
func IsPredefinedCategory(name string) bool {
	name = strings.TrimSpace(name)
	for _, c := range PredefinedCategories {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// Category is a custom label created by a user.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name,priority:1" json:"user_id"`
	Name   string `gorm:"not null;uniqueIndex:idx_categories_user_name,priority:2" json:"name"`
}
