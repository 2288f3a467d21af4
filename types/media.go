package types

// MediaRef points at a file stored in the media host.
//
// A reference is either fully populated (both ID and URL set) or fully
// empty (no file attached). Partially populated references are invalid
// and must never be persisted.
type MediaRef struct {
	// ID is the object key of the file in the media host.
	ID string `json:"id" db:"id"`

	// URL is the public retrieval URL for the file.
	URL string `json:"url" db:"url"`
}

// Valid reports whether the reference is consistent: both fields empty
// or both fields set.
func (m MediaRef) Valid() bool {
	return (m.ID == "") == (m.URL == "")
}

// IsZero reports whether no file is attached.
func (m MediaRef) IsZero() bool {
	return m.ID == "" && m.URL == ""
}
