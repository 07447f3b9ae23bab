package models

// Category groups occupations.
type Category struct {
	ID    int    `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}

// Occupation is a profession tag, also used as a ticket subcategory.
type Occupation struct {
	ID         int    `db:"id" json:"id"`
	CategoryID int    `db:"category_id" json:"categoryId"`
	Title      string `db:"title" json:"title"`
}
