package database

import (
	"fmt"

	"blogicum/internal/models"
)

// CommentsForPost возвращает комментарии поста, старые первыми.
func CommentsForPost(postID int) ([]models.Comment, error) {
	rows, err := DB.Query(`
		SELECT co.id, co.post_id, co.author_id, co.text, co.created_at, u.username
		FROM comments co
		JOIN users u ON co.author_id = u.id
		WHERE co.post_id = ?
		ORDER BY co.created_at ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.Author); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}
	return comments, nil
}

// GetCommentByID выбирает комментарий по первичному ключу.
// Возвращает sql.ErrNoRows, если комментария нет.
func GetCommentByID(id int) (models.Comment, error) {
	var c models.Comment
	err := DB.QueryRow(`
		SELECT co.id, co.post_id, co.author_id, co.text, co.created_at, u.username
		FROM comments co
		JOIN users u ON co.author_id = u.id
		WHERE co.id = ?`, id).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.Author)
	if err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// CreateComment сохраняет комментарий. Автор и пост проставляются вызывающей
// стороной из сессии и пути запроса, а не из формы.
func CreateComment(c models.Comment) (int, error) {
	res, err := DB.Exec(
		"INSERT INTO comments (post_id, author_id, text) VALUES (?, ?, ?)",
		c.PostID, c.AuthorID, c.Text,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get comment ID: %w", err)
	}
	return int(id), nil
}

// UpdateComment обновляет текст комментария.
func UpdateComment(id int, text string) error {
	if _, err := DB.Exec("UPDATE comments SET text = ? WHERE id = ?", text, id); err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// DeleteComment удаляет комментарий.
func DeleteComment(id int) error {
	if _, err := DB.Exec("DELETE FROM comments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
