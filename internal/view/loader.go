// Package view holds presentation models that carry no state of their own.
package view

// Loader is the placeholder shown while a fetch or an upload is in flight.
type Loader struct {
	Label     string `json:"label"`
	AriaLabel string `json:"ariaLabel"`
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	Color     string `json:"color"`
}

var defaultLoader = Loader{
	Label:     "Loading...",
	AriaLabel: "circles-loading",
	Height:    80,
	Width:     80,
	Color:     "#4fa94d",
}

// LoaderFor returns the loader when loading is true and nil otherwise, so
// it can sit in a JSON view as an omitempty field.
func LoaderFor(loading bool) *Loader {
	if !loading {
		return nil
	}
	l := defaultLoader
	return &l
}
