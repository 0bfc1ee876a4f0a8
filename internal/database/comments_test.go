package database

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCommentsForPostOrder(t *testing.T) {
	setupTestDB(t)

	now := time.Now()
	alice := mustCreateUser(t, "alice")
	bob := mustCreateUser(t, "bob")
	cat := mustCreateCategory(t, "pub", true)
	post := mustCreatePost(t, alice, cat, now.Add(-time.Hour), true)
	other := mustCreatePost(t, alice, cat, now.Add(-2*time.Hour), true)

	// created_at выставляем вручную, чтобы порядок не зависел от скорости вставки
	texts := []string{"первый", "второй", "третий"}
	for i, text := range texts {
		_, err := DB.Exec(
			"INSERT INTO comments (post_id, author_id, text, created_at) VALUES (?, ?, ?, ?)",
			post, bob, text, now.Add(time.Duration(i)*time.Minute).UTC(),
		)
		require.NoError(t, err)
	}
	_, err := CreateComment(models.Comment{PostID: other, AuthorID: bob, Text: "чужой"})
	require.NoError(t, err)

	comments, err := CommentsForPost(post)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i, c := range comments {
		require.Equal(t, texts[i], c.Text)
		require.Equal(t, "bob", c.Author)
		require.Equal(t, post, c.PostID)
	}
}

func TestCommentCRUD(t *testing.T) {
	setupTestDB(t)

	now := time.Now()
	alice := mustCreateUser(t, "alice")
	cat := mustCreateCategory(t, "pub", true)
	post := mustCreatePost(t, alice, cat, now.Add(-time.Hour), true)

	id, err := CreateComment(models.Comment{PostID: post, AuthorID: alice, Text: "Комментарий"})
	require.NoError(t, err)

	comment, err := GetCommentByID(id)
	require.NoError(t, err)
	require.Equal(t, "Комментарий", comment.Text)
	require.Equal(t, alice, comment.OwnerID())

	require.NoError(t, UpdateComment(id, "Исправлено"))
	comment, err = GetCommentByID(id)
	require.NoError(t, err)
	require.Equal(t, "Исправлено", comment.Text)

	require.NoError(t, DeleteComment(id))
	_, err = GetCommentByID(id)
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestGetPublishedCategoryBySlug(t *testing.T) {
	setupTestDB(t)

	mustCreateCategory(t, "visible", true)
	mustCreateCategory(t, "secret", false)

	cat, err := GetPublishedCategoryBySlug("visible")
	require.NoError(t, err)
	require.Equal(t, "visible", cat.Slug)

	// Скрытая категория неотличима от несуществующей
	_, err = GetPublishedCategoryBySlug("secret")
	require.True(t, errors.Is(err, sql.ErrNoRows))
	_, err = GetPublishedCategoryBySlug("no-such")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}
