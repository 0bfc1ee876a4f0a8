package models

type Category struct {
	ID          int
	Title       string
	Description string
	Slug        string // уникальный, используется в URL
	IsPublished bool
}
