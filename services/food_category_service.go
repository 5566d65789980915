package services

import (
	"context"
	"errors"

	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FoodCategoryService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFoodCategoryService(db *gorm.DB, log *zap.Logger) *FoodCategoryService {
	return &FoodCategoryService{db: db, log: log}
}

type CategoryInput struct {
	Name        string     `json:"name" binding:"required,min=2,max=100"`
	NameArabic  string     `json:"name_arabic" binding:"max=100"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// List returns root categories with their children.
func (s *FoodCategoryService) List(ctx context.Context) ([]models.FoodCategory, error) {
	var out []models.FoodCategory
	err := s.db.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (s *FoodCategoryService) Get(ctx context.Context, id uuid.UUID) (*models.FoodCategory, error) {
	var c models.FoodCategory
	if err := s.db.WithContext(ctx).Preload("Children").First(&c, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "Category")
	}
	return &c, nil
}

func (s *FoodCategoryService) Create(ctx context.Context, in CategoryInput) (*models.FoodCategory, error) {
	db := s.db.WithContext(ctx)
	if err := s.checkName(db, in.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.checkParent(db, in.ParentID, uuid.Nil); err != nil {
		return nil, err
	}

	c := &models.FoodCategory{
		Name:        in.Name,
		NameArabic:  in.NameArabic,
		Description: in.Description,
		ParentID:    in.ParentID,
	}
	if err := writeErr(db.Create(c).Error, "Category with this name already exists"); err != nil {
		return nil, err
	}
	return c, nil
}

// Update renames cascade to foods that reference the old name.
func (s *FoodCategoryService) Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.FoodCategory, error) {
	var out *models.FoodCategory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.FoodCategory
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return lookupErr(err, "Category")
		}
		if err := s.checkName(tx, in.Name, id); err != nil {
			return err
		}
		if err := s.checkParent(tx, in.ParentID, id); err != nil {
			return err
		}

		oldName := c.Name
		c.Name = in.Name
		c.NameArabic = in.NameArabic
		c.Description = in.Description
		c.ParentID = in.ParentID
		if err := writeErr(tx.Save(&c).Error, "Category with this name already exists"); err != nil {
			return err
		}
		if oldName != c.Name {
			if err := tx.Model(&models.Food{}).Where("category = ?", oldName).
				Update("category", c.Name).Error; err != nil {
				return err
			}
		}
		out = &c
		return nil
	})
	return out, err
}

func (s *FoodCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	var c models.FoodCategory
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return lookupErr(err, "Category")
	}

	var children, foods int64
	if err := db.Model(&models.FoodCategory{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Food{}).Where("category = ?", c.Name).Count(&foods).Error; err != nil {
		return err
	}
	if children > 0 || foods > 0 {
		return conflict("Category still has subcategories or foods")
	}
	return db.Delete(&c).Error
}

// Exists reports whether a category with the given name is defined.
func (s *FoodCategoryService) Exists(ctx context.Context, name string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.FoodCategory{}).Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (s *FoodCategoryService) checkName(db *gorm.DB, name string, self uuid.UUID) error {
	var n int64
	q := db.Model(&models.FoodCategory{}).Where("name = ?", name)
	if self != uuid.Nil {
		q = q.Where("id <> ?", self)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return conflict("Category with this name already exists")
	}
	return nil
}

func (s *FoodCategoryService) checkParent(db *gorm.DB, parentID *uuid.UUID, self uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if self != uuid.Nil && *parentID == self {
		return invalid("A category cannot be its own parent")
	}
	var n int64
	if err := db.Model(&models.FoodCategory{}).Where("id = ?", *parentID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return invalid("Parent category not found")
	}
	if self == uuid.Nil {
		return nil
	}

	// the new parent must not sit below self
	seen := map[uuid.UUID]bool{}
	for cur := parentID; cur != nil && !seen[*cur]; {
		if *cur == self {
			return invalid("A category cannot be moved under its own subcategory")
		}
		seen[*cur] = true
		var c models.FoodCategory
		if err := db.Select("id", "parent_id").First(&c, "id = ?", *cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		cur = c.ParentID
	}
	return nil
}
