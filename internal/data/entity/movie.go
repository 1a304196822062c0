package entity

// Movie is a persisted movie record owned by the user that created it.
type Movie struct {
	Base
	Title          string `db:"title"`
	PublishingYear string `db:"publishing_year"`
	Poster         string `db:"poster"`
	UserEmail      string `db:"user_email"`
}
