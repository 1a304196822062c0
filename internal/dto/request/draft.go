package request

// DraftFieldsRequest carries the text inputs a user typed into a form.
// Nil fields are left untouched.
type DraftFieldsRequest struct {
	Title          *string `json:"title,omitempty" validate:"omitempty,max=200"`
	PublishingYear *string `json:"publishingYear,omitempty" validate:"omitempty,max=16"`
}
