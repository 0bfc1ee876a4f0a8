package database

import (
	"fmt"
	"strings"
	"time"

	"blogicum/internal/models"
)

// Visibility задает политику видимости выборки постов.
type Visibility int

const (
	// VisibilityPublic — только публично видимые посты: опубликованные,
	// в опубликованной категории, с наступившей датой публикации.
	VisibilityPublic Visibility = iota
	// VisibilityOwnerPreview — без фильтра видимости. Используется, когда
	// зритель смотрит собственные посты (черновики и отложенные включительно).
	VisibilityOwnerPreview
)

// Annotation задает дополнительные вычисляемые атрибуты выборки.
type Annotation int

const (
	AnnotateNone Annotation = iota
	// AnnotateCommentCount добавляет к каждому посту число комментариев
	// и сортирует выборку по дате публикации, новые первыми. Аннотация и
	// сортировка связаны: любой "лентообразный" список запрашивает обе.
	AnnotateCommentCount
)

// PostQuery описывает один запрос к ленте постов. Нулевое значение поля
// означает отсутствие соответствующего фильтра.
type PostQuery struct {
	Visibility Visibility
	Annotate   Annotation
	CategoryID int
	AuthorID   int
	Search     string // подстрока в заголовке или тексте
	IDs        []int  // кандидаты из поискового индекса
}

const postSelect = `
	SELECT p.id, p.author_id, p.category_id, COALESCE(p.location_id, 0),
	       p.title, p.text, p.pub_date, p.is_published, p.created_at,
	       u.username,
	       c.id, c.title, c.description, c.slug, c.is_published,
	       COALESCE(l.name, '')`

const postFrom = `
	FROM posts p
	JOIN users u ON p.author_id = u.id
	JOIN categories c ON p.category_id = c.id
	LEFT JOIN locations l ON p.location_id = l.id
`

// buildWhere собирает условия WHERE для запроса q. Момент времени now
// передается снаружи, чтобы список и детальная проверка в рамках одного
// запроса пользовались одними часами.
func buildWhere(q PostQuery, now time.Time) (string, []interface{}) {
	var (
		whereClauses []string
		args         []interface{}
	)

	if q.Visibility == VisibilityPublic {
		whereClauses = append(whereClauses, "p.is_published = 1", "c.is_published = 1", "p.pub_date <= ?")
		// Даты хранятся в UTC, сравниваем в UTC
		args = append(args, now.UTC())
	}
	if q.CategoryID > 0 {
		whereClauses = append(whereClauses, "p.category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.AuthorID > 0 {
		whereClauses = append(whereClauses, "p.author_id = ?")
		args = append(args, q.AuthorID)
	}
	if q.Search != "" {
		whereClauses = append(whereClauses, "(p.title LIKE ? OR p.text LIKE ?)")
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}
	if q.IDs != nil {
		if len(q.IDs) == 0 {
			// Пустой список кандидатов — заведомо пустая выборка
			whereClauses = append(whereClauses, "1 = 0")
		} else {
			placeholders := strings.Repeat("?,", len(q.IDs))
			placeholders = placeholders[:len(placeholders)-1]
			whereClauses = append(whereClauses, fmt.Sprintf("p.id IN (%s)", placeholders))
			for _, id := range q.IDs {
				args = append(args, id)
			}
		}
	}

	if len(whereClauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(whereClauses, " AND "), args
}

// SelectPosts возвращает страницу постов по политике q. Категория, место и
// автор подтягиваются одним запросом, без дополнительных обращений на строку.
// Побочных эффектов нет.
func SelectPosts(q PostQuery, now time.Time, limit, offset int) ([]models.Post, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(postSelect)
	if q.Annotate == AnnotateCommentCount {
		queryBuilder.WriteString(",\n\t       (SELECT COUNT(*) FROM comments WHERE post_id = p.id) AS comment_count")
	}
	queryBuilder.WriteString(postFrom)

	where, args := buildWhere(q, now)
	queryBuilder.WriteString(where)

	if q.Annotate == AnnotateCommentCount {
		queryBuilder.WriteString(" ORDER BY p.pub_date DESC ")
	}
	if limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))
	}

	rows, err := DB.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		dest := []interface{}{
			&p.ID, &p.AuthorID, &p.CategoryID, &p.LocationID,
			&p.Title, &p.Text, &p.PubDate, &p.IsPublished, &p.CreatedAt,
			&p.Author,
			&p.Category.ID, &p.Category.Title, &p.Category.Description, &p.Category.Slug, &p.Category.IsPublished,
			&p.Location,
		}
		if q.Annotate == AnnotateCommentCount {
			dest = append(dest, &p.CommentCount)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}
	return posts, nil
}

// CountPosts возвращает общее число постов по политике q (для пагинации).
func CountPosts(q PostQuery, now time.Time) (int, error) {
	where, args := buildWhere(q, now)
	query := "SELECT COUNT(*)" + postFrom + where

	var total int
	if err := DB.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return total, nil
}

// GetPostByID выбирает пост по первичному ключу без фильтра видимости:
// решение о видимости для конкретного зрителя принимает вызывающая сторона
// через Post.VisibleTo. Возвращает sql.ErrNoRows, если поста нет.
func GetPostByID(id int) (models.Post, error) {
	var p models.Post
	err := DB.QueryRow(postSelect+postFrom+" WHERE p.id = ?", id).Scan(
		&p.ID, &p.AuthorID, &p.CategoryID, &p.LocationID,
		&p.Title, &p.Text, &p.PubDate, &p.IsPublished, &p.CreatedAt,
		&p.Author,
		&p.Category.ID, &p.Category.Title, &p.Category.Description, &p.Category.Slug, &p.Category.IsPublished,
		&p.Location,
	)
	if err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// CreatePost сохраняет новый пост и возвращает его ID. Автор уже должен быть
// проставлен вызывающей стороной из сессии, а не из формы.
func CreatePost(p models.Post) (int, error) {
	var locationID interface{}
	if p.LocationID > 0 {
		locationID = p.LocationID
	}
	res, err := DB.Exec(
		"INSERT INTO posts (author_id, category_id, location_id, title, text, pub_date, is_published) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.AuthorID, p.CategoryID, locationID, p.Title, p.Text, p.PubDate.UTC(), p.IsPublished,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get post ID: %w", err)
	}
	return int(id), nil
}

// UpdatePost обновляет редактируемые поля поста.
func UpdatePost(p models.Post) error {
	var locationID interface{}
	if p.LocationID > 0 {
		locationID = p.LocationID
	}
	_, err := DB.Exec(
		"UPDATE posts SET category_id = ?, location_id = ?, title = ?, text = ?, pub_date = ?, is_published = ? WHERE id = ?",
		p.CategoryID, locationID, p.Title, p.Text, p.PubDate.UTC(), p.IsPublished, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// DeletePost удаляет пост вместе с комментариями (FK CASCADE).
func DeletePost(id int) error {
	if _, err := DB.Exec("DELETE FROM posts WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
