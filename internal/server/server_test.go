package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"blogicum/config"
	"blogicum/internal/auth"
	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.DSN = filepath.Join(t.TempDir(), "test.db")
	cfg.Session.Expiration = time.Hour
	config.AppConfig = cfg

	require.NoError(t, database.InitDB(cfg))
	t.Cleanup(func() { database.DB.Close() })

	return Handler()
}

// registerAndLogin создает пользователя и возвращает его сессионную cookie.
func registerAndLogin(t *testing.T, username string) (*models.User, *http.Cookie) {
	t.Helper()
	user, err := auth.RegisterUser(username+"@example.com", username, "secret1")
	require.NoError(t, err)
	_, session, err := auth.LoginUser(username, "secret1")
	require.NoError(t, err)
	return user, &http.Cookie{Name: "session_token", Value: session.UUID}
}

func seedCategory(t *testing.T, slug string, published bool) int {
	t.Helper()
	// Слаг может совпасть с категорией из стартового наполнения
	_, err := database.DB.Exec("DELETE FROM categories WHERE slug = ?", slug)
	require.NoError(t, err)
	res, err := database.DB.Exec(
		"INSERT INTO categories (title, description, slug, is_published) VALUES (?, '', ?, ?)",
		"Категория "+slug, slug, published,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func seedPost(t *testing.T, authorID, categoryID int, title string, pubDate time.Time, published bool) int {
	t.Helper()
	id, err := database.CreatePost(models.Post{
		AuthorID:    authorID,
		CategoryID:  categoryID,
		Title:       title,
		Text:        "Текст поста",
		PubDate:     pubDate,
		IsPublished: published,
	})
	require.NoError(t, err)
	return id
}

func doGet(h http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doPost(h http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexShowsOnlyVisiblePosts(t *testing.T) {
	h := setupServer(t)

	now := time.Now()
	alice, _ := registerAndLogin(t, "alice")
	cat := seedCategory(t, "travel", true)
	hiddenCat := seedCategory(t, "secret", false)

	seedPost(t, alice.ID, cat, "Видимый пост", now.Add(-time.Hour), true)
	seedPost(t, alice.ID, cat, "Черновик поста", now.Add(-time.Hour), false)
	seedPost(t, alice.ID, cat, "Отложенный пост", now.Add(24*time.Hour), true)
	seedPost(t, alice.ID, hiddenCat, "Пост в скрытой категории", now.Add(-time.Hour), true)

	rec := doGet(h, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Видимый пост")
	assert.NotContains(t, body, "Черновик поста")
	assert.NotContains(t, body, "Отложенный пост")
	assert.NotContains(t, body, "Пост в скрытой категории")
}

func TestPostDetailVisibility(t *testing.T) {
	h := setupServer(t)

	now := time.Now()
	alice, aliceCookie := registerAndLogin(t, "alice")
	_, bobCookie := registerAndLogin(t, "bob")
	cat := seedCategory(t, "travel", true)
	draft := seedPost(t, alice.ID, cat, "Черновик", now.Add(-time.Hour), false)
	path := "/posts/" + strconv.Itoa(draft) + "/"

	// Автор видит собственный черновик
	rec := doGet(h, path, aliceCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Черновик")

	// Для остальных скрытый пост неотличим от несуществующего
	require.Equal(t, http.StatusNotFound, doGet(h, path, bobCookie).Code)
	require.Equal(t, http.StatusNotFound, doGet(h, path, nil).Code)
	require.Equal(t, http.StatusNotFound, doGet(h, "/posts/999999/", nil).Code)
}

func TestMutationsRequireLogin(t *testing.T) {
	h := setupServer(t)

	now := time.Now()
	alice, _ := registerAndLogin(t, "alice")
	cat := seedCategory(t, "travel", true)
	post := seedPost(t, alice.ID, cat, "Пост", now.Add(-time.Hour), true)

	paths := []string{
		"/posts/create/",
		"/posts/" + strconv.Itoa(post) + "/edit/",
		"/posts/" + strconv.Itoa(post) + "/delete/",
		"/profile/edit/",
	}
	for _, path := range paths {
		rec := doPost(h, path, url.Values{}, nil)
		require.Equal(t, http.StatusFound, rec.Code, path)
		require.Equal(t, "/login", rec.Header().Get("Location"), path)
	}

	// Анонимный комментарий тоже ведет на вход
	rec := doPost(h, "/posts/"+strconv.Itoa(post)+"/", url.Values{"text": {"привет"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestEditForeignPostRedirects(t *testing.T) {
	h := setupServer(t)

	now := time.Now()
	alice, _ := registerAndLogin(t, "alice")
	_, bobCookie := registerAndLogin(t, "bob")
	cat := seedCategory(t, "travel", true)
	post := seedPost(t, alice.ID, cat, "Пост Алисы", now.Add(-time.Hour), true)

	form := url.Values{
		"title":        {"Взломано"},
		"text":         {"Новый текст"},
		"category":     {strconv.Itoa(cat)},
		"is_published": {"on"},
	}
	rec := doPost(h, "/posts/"+strconv.Itoa(post)+"/edit/", form, bobCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/posts/"+strconv.Itoa(post)+"/", rec.Header().Get("Location"))

	// Мутация не выполнилась
	got, err := database.GetPostByID(post)
	require.NoError(t, err)
	require.Equal(t, "Пост Алисы", got.Title)

	// Удаление чужого поста отклоняется так же
	rec = doPost(h, "/posts/"+strconv.Itoa(post)+"/delete/", url.Values{"_method": {"DELETE"}}, bobCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/posts/"+strconv.Itoa(post)+"/", rec.Header().Get("Location"))
	_, err = database.GetPostByID(post)
	require.NoError(t, err)
}

func TestCommentLifecycleAndOwnership(t *testing.T) {
	h := setupServer(t)

	now := time.Now()
	alice, aliceCookie := registerAndLogin(t, "alice")
	_, bobCookie := registerAndLogin(t, "bob")
	cat := seedCategory(t, "travel", true)
	post := seedPost(t, alice.ID, cat, "Пост", now.Add(-time.Hour), true)
	postPath := "/posts/" + strconv.Itoa(post) + "/"

	// Боб комментирует пост Алисы
	rec := doPost(h, postPath, url.Values{"text": {"Отличный пост"}}, bobCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, postPath, rec.Header().Get("Location"))

	comments, err := database.CommentsForPost(post)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	comment := comments[0]
	require.Equal(t, "bob", comment.Author)

	editPath := postPath + "comment/" + strconv.Itoa(comment.ID) + "/edit/"

	// Алиса — автор поста, но не комментария: редирект на страницу поста
	rec = doPost(h, editPath, url.Values{"text": {"Подмена"}}, aliceCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, postPath, rec.Header().Get("Location"))
	got, err := database.GetCommentByID(comment.ID)
	require.NoError(t, err)
	require.Equal(t, "Отличный пост", got.Text)

	// Владелец комментария редактирует и удаляет его
	rec = doPost(h, editPath, url.Values{"_method": {"PUT"}, "text": {"Исправлено"}}, bobCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, postPath, rec.Header().Get("Location"))
	got, err = database.GetCommentByID(comment.ID)
	require.NoError(t, err)
	require.Equal(t, "Исправлено", got.Text)

	deletePath := postPath + "comment/" + strconv.Itoa(comment.ID) + "/delete/"
	rec = doPost(h, deletePath, url.Values{"_method": {"DELETE"}}, bobCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	comments, err = database.CommentsForPost(post)
	require.NoError(t, err)
	require.Empty(t, comments)
}

func TestCreateEditDeleteOwnPost(t *testing.T) {
	h := setupServer(t)

	alice, aliceCookie := registerAndLogin(t, "alice")
	cat := seedCategory(t, "travel", true)

	form := url.Values{
		"title":        {"Мой новый пост"},
		"text":         {"Содержимое"},
		"category":     {strconv.Itoa(cat)},
		"pub_date":     {"2020-01-01T12:00"},
		"is_published": {"on"},
	}
	rec := doPost(h, "/posts/create/", form, aliceCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/profile/alice/", rec.Header().Get("Location"))

	posts, err := database.SelectPosts(database.PostQuery{Visibility: database.VisibilityOwnerPreview}, time.Now(), 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	post := posts[0]
	require.Equal(t, alice.ID, post.AuthorID)

	postPath := "/posts/" + strconv.Itoa(post.ID) + "/"

	form.Set("title", "Исправленный пост")
	form.Set("_method", "PUT")
	rec = doPost(h, postPath+"edit/", form, aliceCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, postPath, rec.Header().Get("Location"))

	got, err := database.GetPostByID(post.ID)
	require.NoError(t, err)
	require.Equal(t, "Исправленный пост", got.Title)
	require.Equal(t, alice.ID, got.AuthorID)

	rec = doPost(h, postPath+"delete/", url.Values{"_method": {"DELETE"}}, aliceCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	_, err = database.GetPostByID(post.ID)
	require.Error(t, err)
}

func TestCategoryPage(t *testing.T) {
	h := setupServer(t)

	now := time.Now()
	alice, _ := registerAndLogin(t, "alice")
	travel := seedCategory(t, "travel", true)
	food := seedCategory(t, "food", true)
	seedCategory(t, "secret", false)

	seedPost(t, alice.ID, travel, "Про путешествия", now.Add(-time.Hour), true)
	seedPost(t, alice.ID, food, "Про еду", now.Add(-time.Hour), true)
	seedPost(t, alice.ID, travel, "Черновик о путешествиях", now.Add(-time.Hour), false)

	rec := doGet(h, "/category/travel/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Про путешествия")
	assert.NotContains(t, body, "Про еду")
	assert.NotContains(t, body, "Черновик о путешествиях")

	// Скрытая категория неотличима от несуществующей
	require.Equal(t, http.StatusNotFound, doGet(h, "/category/secret/", nil).Code)
	require.Equal(t, http.StatusNotFound, doGet(h, "/category/no-such/", nil).Code)
}

func TestProfileOwnerPreview(t *testing.T) {
	h := setupServer(t)

	now := time.Now()
	alice, aliceCookie := registerAndLogin(t, "alice")
	_, bobCookie := registerAndLogin(t, "bob")
	cat := seedCategory(t, "travel", true)

	seedPost(t, alice.ID, cat, "Опубликованный", now.Add(-time.Hour), true)
	seedPost(t, alice.ID, cat, "Черновик профиля", now.Add(-time.Hour), false)

	// Владелец видит в своем профиле и черновики
	rec := doGet(h, "/profile/alice/", aliceCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Черновик профиля")

	// Чужой профиль показывает только публично видимое
	rec = doGet(h, "/profile/alice/", bobCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Опубликованный")
	assert.NotContains(t, body, "Черновик профиля")

	require.Equal(t, http.StatusNotFound, doGet(h, "/profile/nobody/", nil).Code)
}

func TestSearchFallback(t *testing.T) {
	h := setupServer(t)

	now := time.Now()
	alice, _ := registerAndLogin(t, "alice")
	cat := seedCategory(t, "travel", true)

	seedPost(t, alice.ID, cat, "Поход в горы", now.Add(-time.Hour), true)
	seedPost(t, alice.ID, cat, "Рецепт борща", now.Add(-time.Hour), true)
	seedPost(t, alice.ID, cat, "Черновик про горы", now.Add(-time.Hour), false)

	// Без поискового индекса работает поиск по подстроке
	rec := doGet(h, "/posts/search/?q="+url.QueryEscape("горы"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Поход в горы")
	assert.NotContains(t, body, "Рецепт борща")
	assert.NotContains(t, body, "Черновик про горы")
}

func TestInvalidResourceID(t *testing.T) {
	h := setupServer(t)
	_, cookie := registerAndLogin(t, "alice")

	// Числовой шаблон маршрута не пропускает нечисловой ID
	require.Equal(t, http.StatusNotFound, doGet(h, "/posts/abc/", nil).Code)
	// У маршрутов мутаций ID проверяется при поиске ресурса
	require.Equal(t, http.StatusBadRequest, doGet(h, "/posts/abc/edit/", cookie).Code)
	require.Equal(t, http.StatusNotFound, doGet(h, "/posts/999999/edit/", cookie).Code)
}

