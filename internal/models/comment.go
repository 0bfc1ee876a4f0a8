package models

import "time"

type Comment struct {
	ID        int
	PostID    int
	AuthorID  int
	Text      string
	CreatedAt time.Time
	Author    string // username of the author
}

// OwnerID возвращает владельца комментария для проверки прав на изменение.
func (c Comment) OwnerID() int { return c.AuthorID }
