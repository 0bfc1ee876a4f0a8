package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"blogicum/internal/auth"
	"blogicum/internal/database"
)

// SearchHandler — полнотекстовый поиск по постам. Индекс отдает только ID
// кандидатов; итоговая страница всегда перечитывается из БД с публичным
// фильтром видимости. Без настроенного индекса поиск идет по подстроке
// через тот же построитель выборки.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	user := auth.GetUserFromContext(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	data := TemplateData{User: user, Query: query, Page: 1}
	if query == "" {
		renderTemplate(w, r, "search.html", data)
		return
	}

	q := database.PostQuery{
		Visibility: database.VisibilityPublic,
		Annotate:   database.AnnotateCommentCount,
	}
	if SearchIndex != nil {
		ids, err := SearchIndex.SearchIDs(query)
		if err != nil {
			// Индекс недоступен — откатываемся на поиск через БД
			log.Printf("Search index failed for %q, falling back to database: %v", query, err)
			q.Search = query
		} else {
			q.IDs = ids
		}
	} else {
		q.Search = query
	}

	posts, page, totalPages, err := feedPage(q, r, time.Now())
	if err != nil {
		Render500(w, r, "Failed to search posts: "+err.Error())
		return
	}

	data.Posts = posts
	data.Page = page
	data.TotalPages = totalPages
	renderTemplate(w, r, "search.html", data)
}
