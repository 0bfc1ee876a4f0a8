package models

type User struct {
	ID        int
	Email     string
	Username  string
	Password  string // bcrypt hash, never rendered
	FirstName string
	LastName  string
}
