package form

import (
	"strings"

	"movie-catalog/pkg/utils"
)

const (
	FieldTitle          = "title"
	FieldPublishingYear = "publishingYear"
	FieldPoster         = "poster"
)

// Rule constrains one field.
type Rule struct {
	Required bool
	Message  string
}

// Schema is an ordered field -> rule mapping. Validate is pure.
type Schema struct {
	order []string
	rules map[string]Rule
}

func NewSchema() *Schema {
	return &Schema{rules: make(map[string]Rule)}
}

// Register declares a field, replacing any earlier rule for the same name.
func (s *Schema) Register(name string, rule Rule) *Schema {
	if _, ok := s.rules[name]; !ok {
		s.order = append(s.order, name)
	}
	s.rules[name] = rule
	return s
}

func (s *Schema) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Validate returns field -> message for every required field whose value
// is blank. Surrounding whitespace does not count as a value. The result is
// nil when everything passes.
func (s *Schema) Validate(values map[string]string) map[string]string {
	var errs map[string]string
	for _, name := range s.order {
		rule := s.rules[name]
		if !rule.Required || utils.ValidateVar(strings.TrimSpace(values[name]), "required") == nil {
			continue
		}
		if errs == nil {
			errs = make(map[string]string)
		}
		msg := rule.Message
		if msg == "" {
			msg = "This field is required"
		}
		errs[name] = msg
	}
	return errs
}

// MovieSchema is the movie form: title, publishing year and poster are all
// required. Publishing year is a presence check only.
func MovieSchema() *Schema {
	return NewSchema().
		Register(FieldTitle, Rule{Required: true, Message: "Title is required"}).
		Register(FieldPublishingYear, Rule{Required: true, Message: "Publishing year is required"}).
		Register(FieldPoster, Rule{Required: true, Message: "Poster is required"})
}

// Values are the submitted form fields.
type Values struct {
	Title          string `json:"title"`
	PublishingYear string `json:"publishingYear"`
	Poster         string `json:"poster"`
}

func (v Values) Map() map[string]string {
	return map[string]string{
		FieldTitle:          v.Title,
		FieldPublishingYear: v.PublishingYear,
		FieldPoster:         v.Poster,
	}
}
