package models

import "time"

type Post struct {
	ID          int
	AuthorID    int
	CategoryID  int
	LocationID  int // 0, если место не указано
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	CreatedAt   time.Time

	// Заполняются JOIN-ами при выборке
	Author       string // username автора
	Category     Category
	Location     string
	CommentCount int
}

// OwnerID возвращает владельца поста для проверки прав на изменение.
func (p Post) OwnerID() int { return p.AuthorID }

// VisibleTo сообщает, виден ли пост данному зрителю в данный момент.
// Автор всегда видит свой пост; остальные — только опубликованный пост
// в опубликованной категории с наступившей датой публикации.
func (p Post) VisibleTo(viewer *User, now time.Time) bool {
	if viewer != nil && viewer.ID == p.AuthorID {
		return true
	}
	return p.IsPublished && p.Category.IsPublished && !p.PubDate.After(now)
}
