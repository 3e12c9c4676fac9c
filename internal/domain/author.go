package domain

// Author represents a book author in the catalog.
type Author struct {
	Entity
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}
