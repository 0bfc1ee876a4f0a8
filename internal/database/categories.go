package database

import (
	"fmt"

	"blogicum/internal/models"
)

// GetPublishedCategoryBySlug выбирает опубликованную категорию по слагу.
// Скрытая категория неотличима от несуществующей: в обоих случаях
// возвращается sql.ErrNoRows.
func GetPublishedCategoryBySlug(slug string) (models.Category, error) {
	var c models.Category
	err := DB.QueryRow(
		"SELECT id, title, description, slug, is_published FROM categories WHERE slug = ? AND is_published = 1",
		slug,
	).Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.IsPublished)
	if err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// ListPublishedCategories возвращает категории для формы поста.
func ListPublishedCategories() ([]models.Category, error) {
	rows, err := DB.Query("SELECT id, title, description, slug, is_published FROM categories WHERE is_published = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.IsPublished); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

// ListLocations возвращает места для формы поста.
func ListLocations() ([]models.Location, error) {
	rows, err := DB.Query("SELECT id, name, is_published FROM locations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to select locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.IsPublished); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read locations: %w", err)
	}
	return locations, nil
}
