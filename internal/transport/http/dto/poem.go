package dto

// CreatePoemRequest is the body of POST /api/poems.
type CreatePoemRequest struct {
	Title  string `json:"title" validate:"required"`
	Body   string `json:"body" validate:"required"`
	Author string `json:"author"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Type   string `json:"type" validate:"required,oneof=kavithai katurai"`
}
