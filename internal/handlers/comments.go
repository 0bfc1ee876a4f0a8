package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"blogicum/internal/auth"
	"blogicum/internal/database"
)

// EditCommentHandler — редактирование комментария. Владелец уже проверен
// (requireOwner), комментарий лежит в контексте запроса. Редирект после
// успеха — на страницу родительского поста.
func EditCommentHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())
	comment, ok := ownedComment(r)
	if !ok {
		Render500(w, r, "Comment missing from request context.")
		return
	}

	if r.Method == http.MethodPut || r.Method == http.MethodPost {
		newText := strings.TrimSpace(r.FormValue("text"))
		textRunes := countRunes(newText)
		if textRunes == 0 || textRunes > maxCommentLen {
			Render400(w, r, fmt.Sprintf("Comment must be between 1 and %d characters.", maxCommentLen))
			return
		}
		if err := database.UpdateComment(comment.ID, newText); err != nil {
			Render500(w, r, "Failed to update comment: "+err.Error())
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/posts/%d/", comment.PostID), http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	renderTemplate(w, r, "comment_form.html", TemplateData{User: user, Comment: comment})
}

// DeleteCommentHandler — удаление комментария владельцем. Редирект — на
// страницу родительского поста, найденную по ссылке комментария.
func DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())
	comment, ok := ownedComment(r)
	if !ok {
		Render500(w, r, "Comment missing from request context.")
		return
	}

	if r.Method == http.MethodGet {
		// Страница подтверждения
		renderTemplate(w, r, "comment_form.html", TemplateData{User: user, Comment: comment})
		return
	}

	if r.Method != http.MethodDelete && r.Method != http.MethodPost {
		Render405(w, r)
		return
	}

	if err := database.DeleteComment(comment.ID); err != nil {
		Render500(w, r, "Failed to delete comment: "+err.Error())
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", comment.PostID), http.StatusSeeOther)
}
