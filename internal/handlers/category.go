package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"blogicum/internal/auth"
	"blogicum/internal/database"

	"github.com/gorilla/mux"
)

// CategoryHandler — лента постов категории. Категория ищется по слагу среди
// опубликованных; скрытая категория неотличима от несуществующей.
func CategoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	user := auth.GetUserFromContext(r.Context())
	slug := mux.Vars(r)["category_slug"]

	category, err := database.GetPublishedCategoryBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			Render404(w, r)
			return
		}
		Render500(w, r, "Failed to load category: "+err.Error())
		return
	}

	q := database.PostQuery{
		Visibility: database.VisibilityPublic,
		Annotate:   database.AnnotateCommentCount,
		CategoryID: category.ID,
	}
	posts, page, totalPages, err := feedPage(q, r, time.Now())
	if err != nil {
		Render500(w, r, "Failed to load posts: "+err.Error())
		return
	}

	renderTemplate(w, r, "category.html", TemplateData{
		User:       user,
		Category:   category,
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
	})
}
