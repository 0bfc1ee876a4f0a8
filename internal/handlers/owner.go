package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"blogicum/internal/auth"
	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/gorilla/mux"
)

// Ownable — ресурс, у которого есть владелец. Проверка прав на изменение
// поста и комментария различается только способом поиска ресурса и адресом
// редиректа, поэтому сама проверка обобщена.
type Ownable interface {
	OwnerID() int
}

var errBadResourceID = errors.New("invalid resource id")

// resolveFunc ищет ресурс по параметрам пути запроса и возвращает его вместе
// с адресом публичной страницы ресурса — целью редиректа при отказе.
// Цель редиректа задается каждым ресурсом явно: для комментария это страница
// родительского поста, а не сам комментарий.
type resolveFunc func(r *http.Request) (Ownable, string, error)

type ownedResourceKey struct{}

// requireOwner — второй ярус авторизации: ресурс ищется по пути, и если
// зритель не его владелец, запрос молча перенаправляется на публичную
// страницу ресурса без выполнения мутации. Найденный ресурс кладется в
// контекст, чтобы обработчик не ходил в БД повторно.
func requireOwner(resolve resolveFunc, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resource, redirectURL, err := resolve(r)
		if err != nil {
			if errors.Is(err, errBadResourceID) {
				Render400(w, r, "Invalid resource ID.")
				return
			}
			if errors.Is(err, sql.ErrNoRows) {
				Render404(w, r)
				return
			}
			Render500(w, r, "Failed to resolve resource: "+err.Error())
			return
		}

		user := auth.GetUserFromContext(r.Context())
		if user == nil || user.ID != resource.OwnerID() {
			http.Redirect(w, r, redirectURL, http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), ownedResourceKey{}, resource)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolvePost ищет пост по {post_id}; редирект при отказе — на его страницу.
func resolvePost(r *http.Request) (Ownable, string, error) {
	id, err := strconv.Atoi(mux.Vars(r)["post_id"])
	if err != nil {
		return nil, "", errBadResourceID
	}
	post, err := database.GetPostByID(id)
	if err != nil {
		return nil, "", err
	}
	return post, fmt.Sprintf("/posts/%d/", post.ID), nil
}

// resolveComment ищет комментарий по {comment_id}; редирект при отказе — на
// страницу родительского поста, вычисленную из ссылки комментария.
func resolveComment(r *http.Request) (Ownable, string, error) {
	id, err := strconv.Atoi(mux.Vars(r)["comment_id"])
	if err != nil {
		return nil, "", errBadResourceID
	}
	comment, err := database.GetCommentByID(id)
	if err != nil {
		return nil, "", err
	}
	return comment, fmt.Sprintf("/posts/%d/", comment.PostID), nil
}

// OwnPost оборачивает обработчик проверкой владельца поста из {post_id}.
func OwnPost(next http.HandlerFunc) http.Handler {
	return requireOwner(resolvePost, next)
}

// OwnComment оборачивает обработчик проверкой владельца комментария из {comment_id}.
func OwnComment(next http.HandlerFunc) http.Handler {
	return requireOwner(resolveComment, next)
}

// ownedPost достает из контекста пост, уже найденный requireOwner.
func ownedPost(r *http.Request) (models.Post, bool) {
	post, ok := r.Context().Value(ownedResourceKey{}).(models.Post)
	return post, ok
}

// ownedComment достает из контекста комментарий, уже найденный requireOwner.
func ownedComment(r *http.Request) (models.Comment, bool) {
	comment, ok := r.Context().Value(ownedResourceKey{}).(models.Comment)
	return comment, ok
}
