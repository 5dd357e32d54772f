package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "spendsnap/internal/errors"
	"spendsnap/internal/models"
)

const maxCategoryNameLength = 50

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory adds a custom category for the user. Names are unique per
// user, ignoring case, and may not shadow a predefined category.
func (s *categoryService) CreateCategory(userID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if len(name) > maxCategoryNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name must be at most 50 characters")
	}
	if models.IsPredefinedCategory(name) {
		return nil, apperrors.ErrDuplicateCategory
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories lists the user's custom categories in creation order.
func (s *categoryService) GetUserCategories(userID string) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *categoryService) CategoryNames(userID string) ([]string, error) {
	custom, err := s.GetUserCategories(userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(models.PredefinedCategories)+len(custom))
	names = append(names, models.PredefinedCategories...)
	for _, c := range custom {
		names = append(names, c.Name)
	}
	return names, nil
}

// IsKnownCategory reports whether name is predefined or one of the user's
// custom categories. Custom names match exactly.
func (s *categoryService) IsKnownCategory(userID, name string) (bool, error) {
	for _, c := range models.PredefinedCategories {
		if c == name {
			return true, nil
		}
	}
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
