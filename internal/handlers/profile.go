package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"blogicum/internal/auth"
	"blogicum/internal/database"

	"github.com/gorilla/mux"
)

// ProfileHandler — лента постов пользователя. Владелец профиля видит все
// свои посты, включая черновики и отложенные; остальные — только публично
// видимые.
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	user := auth.GetUserFromContext(r.Context())
	username := mux.Vars(r)["username"]

	profile, err := database.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			Render404(w, r)
			return
		}
		Render500(w, r, "Failed to load profile: "+err.Error())
		return
	}

	visibility := database.VisibilityPublic
	if user != nil && user.ID == profile.ID {
		visibility = database.VisibilityOwnerPreview
	}

	q := database.PostQuery{
		Visibility: visibility,
		Annotate:   database.AnnotateCommentCount,
		AuthorID:   profile.ID,
	}
	posts, page, totalPages, err := feedPage(q, r, time.Now())
	if err != nil {
		Render500(w, r, "Failed to load posts: "+err.Error())
		return
	}

	renderTemplate(w, r, "profile.html", TemplateData{
		User:       user,
		Profile:    profile,
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
	})
}

// ProfileEditHandler — редактирование собственного профиля. Цель правки
// всегда берется из сессии, а не из пути, поэтому проверка владельца не
// нужна (middleware уже отсек анонимных).
func ProfileEditHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	if r.Method == http.MethodPost {
		updated := *user
		updated.FirstName = strings.TrimSpace(r.FormValue("first_name"))
		updated.LastName = strings.TrimSpace(r.FormValue("last_name"))
		if email := strings.TrimSpace(r.FormValue("email")); email != "" {
			updated.Email = email
		}

		if err := database.UpdateUserProfile(updated); err != nil {
			Render500(w, r, "Failed to update profile: "+err.Error())
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/profile/%s/", user.Username), http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	renderTemplate(w, r, "profile_form.html", TemplateData{User: user, Profile: *user})
}
