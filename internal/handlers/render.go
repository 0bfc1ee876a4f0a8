package handlers

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"blogicum/internal/cache"
	"blogicum/internal/models"
	"blogicum/internal/search"
)

// PostCache и SearchIndex подключаются из main. Оба необязательны:
// nil-значения отключают кеш и поисковый индекс.
var (
	PostCache   *cache.RedisCache
	SearchIndex *search.Index
)

// Шаблоны встроены в бинарник, чтобы не зависеть от рабочей директории.
//
//go:embed templates/*.html
var templateFS embed.FS

// Global templates variable to parse templates once at startup
var templates *template.Template

// TemplateData holds data passed to HTML templates.
type TemplateData struct {
	User       *models.User
	Error      string
	Categories []models.Category
	Locations  []models.Location
	Posts      []models.Post
	Post       models.Post
	Comments   []models.Comment
	Comment    models.Comment // For comment_form.html
	Category   models.Category
	Profile    models.User
	Query      string
	TotalPages int
	Page       int
}

func init() {
	var err error
	templates, err = template.New("").Funcs(template.FuncMap{
		"inc": func(a int) int { return a + 1 },
		"dec": func(a int) int { return a - 1 },
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 02, 2006 at 15:04")
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		log.Fatalf("Error parsing templates: %v", err)
	}
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data TemplateData) {
	// Используем буфер для рендеринга, чтобы не отправлять частичный вывод при ошибке
	var buf strings.Builder
	err := templates.ExecuteTemplate(&buf, templateName, data)
	if err != nil {
		log.Printf("Error rendering template %s: %v", templateName, err)
		if w.Header().Get("Content-Type") == "" {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(buf.String()))
}

// HTTP Error Handlers
func Render400(w http.ResponseWriter, r *http.Request, message string) {
	w.WriteHeader(http.StatusBadRequest)
	renderTemplate(w, r, "error.html", TemplateData{Error: "400 Bad Request: " + message})
}

func Render404(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	renderTemplate(w, r, "error.html", TemplateData{Error: "404 Not Found"})
}

func Render405(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
	renderTemplate(w, r, "error.html", TemplateData{Error: "405 Method Not Allowed"})
}

func Render500(w http.ResponseWriter, r *http.Request, message string) {
	log.Printf("Internal Server Error: %s", message)
	w.WriteHeader(http.StatusInternalServerError)
	renderTemplate(w, r, "error.html", TemplateData{Error: "500 Internal Server Error: " + message})
}

const (
	maxTitleLen   = 256
	maxContentLen = 2500
	maxCommentLen = 500
)

// countRunes counts the number of runes (Unicode characters) in a string
func countRunes(s string) int {
	return utf8.RuneCountInString(s)
}
