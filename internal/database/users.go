package database

import (
	"fmt"

	"blogicum/internal/models"
)

// GetUserByUsername выбирает пользователя по имени (без учета регистра).
// Возвращает sql.ErrNoRows, если пользователя нет.
func GetUserByUsername(username string) (models.User, error) {
	var u models.User
	err := DB.QueryRow(
		"SELECT id, email, username, first_name, last_name FROM users WHERE username = ? COLLATE NOCASE",
		username,
	).Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UpdateUserProfile обновляет редактируемые поля профиля. Цель правки всегда
// выводится из сессии, поэтому проверка владельца здесь не нужна.
func UpdateUserProfile(u models.User) error {
	_, err := DB.Exec(
		"UPDATE users SET first_name = ?, last_name = ?, email = ? WHERE id = ?",
		u.FirstName, u.LastName, u.Email, u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}
