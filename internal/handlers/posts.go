package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blogicum/config"
	"blogicum/internal/auth"
	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/gorilla/mux"
)

// feedPage выбирает страницу ленты по политике q вместе с числом страниц.
func feedPage(q database.PostQuery, r *http.Request, now time.Time) ([]models.Post, int, int, error) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	total, err := database.CountPosts(q, now)
	if err != nil {
		return nil, 0, 0, err
	}
	totalPages := (total + config.PostsPerPage - 1) / config.PostsPerPage

	posts, err := database.SelectPosts(q, now, config.PostsPerPage, (page-1)*config.PostsPerPage)
	if err != nil {
		return nil, 0, 0, err
	}
	return posts, page, totalPages, nil
}

// IndexHandler — главная лента: публично видимые посты с числом комментариев,
// новые первыми.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		Render404(w, r)
		return
	}
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	user := auth.GetUserFromContext(r.Context())
	now := time.Now()

	q := database.PostQuery{
		Visibility: database.VisibilityPublic,
		Annotate:   database.AnnotateCommentCount,
	}
	posts, page, totalPages, err := feedPage(q, r, now)
	if err != nil {
		Render500(w, r, "Failed to load posts: "+err.Error())
		return
	}

	renderTemplate(w, r, "index.html", TemplateData{User: user, Posts: posts, Page: page, TotalPages: totalPages})
}

// fetchPost достает пост по ID: сперва из кеша, затем из БД (cache-aside).
// Кешируется строка целиком; видимость для зрителя решается после.
func fetchPost(id int) (models.Post, error) {
	cached, err := PostCache.GetPost(id)
	if err != nil {
		log.Printf("Cache read failed for post %d: %v", id, err)
	}
	if cached != nil {
		return *cached, nil
	}

	post, err := database.GetPostByID(id)
	if err != nil {
		return models.Post{}, err
	}
	if err := PostCache.SetPost(&post); err != nil {
		log.Printf("Cache write failed for post %d: %v", id, err)
	}
	return post, nil
}

// PostDetailHandler — страница поста (GET) и создание комментария (POST по
// тому же пути). Пост выбирается один раз без фильтра видимости, после чего
// проверяется вручную: автор видит свой пост в любом состоянии, для
// остальных скрытый пост неотличим от несуществующего.
func PostDetailHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	postID, err := strconv.Atoi(mux.Vars(r)["post_id"])
	if err != nil {
		Render400(w, r, "Invalid post ID format.")
		return
	}

	post, err := fetchPost(postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			Render404(w, r)
			return
		}
		Render500(w, r, "Failed to load post: "+err.Error())
		return
	}

	if !post.VisibleTo(user, time.Now()) {
		Render404(w, r)
		return
	}

	if r.Method == http.MethodPost {
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		commentText := strings.TrimSpace(r.FormValue("text"))
		commentRuneCount := countRunes(commentText)
		if commentRuneCount == 0 || commentRuneCount > maxCommentLen {
			Render400(w, r, fmt.Sprintf("Comment must be between 1 and %d characters.", maxCommentLen))
			return
		}
		// Автор и пост берутся из сессии и пути, а не из формы
		_, err := database.CreateComment(models.Comment{PostID: post.ID, AuthorID: user.ID, Text: commentText})
		if err != nil {
			Render500(w, r, "Failed to add comment: "+err.Error())
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	comments, err := database.CommentsForPost(post.ID)
	if err != nil {
		Render500(w, r, "Failed to load comments: "+err.Error())
		return
	}

	renderTemplate(w, r, "detail.html", TemplateData{User: user, Post: post, Comments: comments})
}

// parsePostForm разбирает поля формы поста. Автора в форме нет и быть не
// может: он всегда проставляется из сессии. Возвращает текст ошибки
// валидации либо пустую строку.
func parsePostForm(r *http.Request) (models.Post, string) {
	var p models.Post

	p.Title = strings.TrimSpace(r.FormValue("title"))
	p.Text = strings.TrimSpace(strings.ReplaceAll(r.FormValue("text"), "\r\n", "\n"))

	titleRunes := countRunes(p.Title)
	if titleRunes == 0 || titleRunes > maxTitleLen {
		return p, fmt.Sprintf("Title must be between 1 and %d characters.", maxTitleLen)
	}
	textRunes := countRunes(p.Text)
	if textRunes == 0 || textRunes > maxContentLen {
		return p, fmt.Sprintf("Text must be between 1 and %d characters.", maxContentLen)
	}

	categoryID, err := strconv.Atoi(r.FormValue("category"))
	if err != nil || categoryID <= 0 {
		return p, "A category must be selected."
	}
	p.CategoryID = categoryID

	if loc := r.FormValue("location"); loc != "" {
		locationID, err := strconv.Atoi(loc)
		if err != nil || locationID < 0 {
			return p, "Invalid location."
		}
		p.LocationID = locationID
	}

	p.PubDate = time.Now()
	if raw := r.FormValue("pub_date"); raw != "" {
		parsed, err := parsePubDate(raw)
		if err != nil {
			return p, "Invalid publication date."
		}
		p.PubDate = parsed
	}

	p.IsPublished = r.FormValue("is_published") != ""
	return p, ""
}

// parsePubDate принимает значение datetime-local либо голую дату.
func parsePubDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", raw)
}

// postFormData собирает справочники для формы поста.
func postFormData(user *models.User) (TemplateData, error) {
	categories, err := database.ListPublishedCategories()
	if err != nil {
		return TemplateData{}, err
	}
	locations, err := database.ListLocations()
	if err != nil {
		return TemplateData{}, err
	}
	return TemplateData{User: user, Categories: categories, Locations: locations}, nil
}

// CreatePostHandler — создание поста. Требует аутентификации (middleware);
// после сохранения ведет на профиль автора.
func CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	if r.Method == http.MethodPost {
		post, errMsg := parsePostForm(r)
		if errMsg != "" {
			Render400(w, r, errMsg)
			return
		}
		post.AuthorID = user.ID // только из сессии, никогда из формы

		id, err := database.CreatePost(post)
		if err != nil {
			Render500(w, r, "Failed to create post: "+err.Error())
			return
		}
		post.ID = id

		go func(p models.Post) {
			if err := SearchIndex.IndexPost(&p); err != nil {
				log.Printf("Failed to index post %d: %v", p.ID, err)
			}
		}(post)

		http.Redirect(w, r, fmt.Sprintf("/profile/%s/", user.Username), http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	data, err := postFormData(user)
	if err != nil {
		Render500(w, r, "Failed to load form data: "+err.Error())
		return
	}
	renderTemplate(w, r, "post_form.html", data)
}

// EditPostHandler — редактирование поста. Владелец уже проверен (requireOwner),
// сам пост лежит в контексте запроса.
func EditPostHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())
	post, ok := ownedPost(r)
	if !ok {
		Render500(w, r, "Post missing from request context.")
		return
	}

	if r.Method == http.MethodPut || r.Method == http.MethodPost {
		updated, errMsg := parsePostForm(r)
		if errMsg != "" {
			Render400(w, r, errMsg)
			return
		}
		updated.ID = post.ID
		updated.AuthorID = post.AuthorID // владелец не меняется

		if err := database.UpdatePost(updated); err != nil {
			Render500(w, r, "Failed to update post: "+err.Error())
			return
		}
		if err := PostCache.InvalidatePost(post.ID); err != nil {
			log.Printf("Cache invalidation failed for post %d: %v", post.ID, err)
		}
		go func(p models.Post) {
			if err := SearchIndex.IndexPost(&p); err != nil {
				log.Printf("Failed to reindex post %d: %v", p.ID, err)
			}
		}(updated)

		http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	data, err := postFormData(user)
	if err != nil {
		Render500(w, r, "Failed to load form data: "+err.Error())
		return
	}
	data.Post = post
	renderTemplate(w, r, "post_form.html", data)
}

// DeletePostHandler — удаление поста владельцем; после удаления ведет на
// главную ленту.
func DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())
	post, ok := ownedPost(r)
	if !ok {
		Render500(w, r, "Post missing from request context.")
		return
	}

	if r.Method == http.MethodGet {
		// Страница подтверждения
		data, err := postFormData(user)
		if err != nil {
			Render500(w, r, "Failed to load form data: "+err.Error())
			return
		}
		data.Post = post
		renderTemplate(w, r, "post_form.html", data)
		return
	}

	if r.Method != http.MethodDelete && r.Method != http.MethodPost {
		Render405(w, r)
		return
	}

	if err := database.DeletePost(post.ID); err != nil {
		Render500(w, r, "Failed to delete post: "+err.Error())
		return
	}
	if err := PostCache.InvalidatePost(post.ID); err != nil {
		log.Printf("Cache invalidation failed for post %d: %v", post.ID, err)
	}
	go func(id int) {
		if err := SearchIndex.DeletePost(id); err != nil {
			log.Printf("Failed to remove post %d from index: %v", id, err)
		}
	}(post.ID)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
