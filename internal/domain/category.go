package domain

// Category groups tickets by problem area.
type Category struct {
	ID          int64
	Name        string
	Description string
}
