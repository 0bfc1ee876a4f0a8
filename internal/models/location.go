package models

// Location — место, к которому привязан пост. Самостоятельной логики нет:
// флаг is_published не влияет на видимость поста.
type Location struct {
	ID          int
	Name        string
	IsPublished bool
}
