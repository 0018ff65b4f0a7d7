package model

// PageSizes are the selectable page sizes for the items listing.
var PageSizes = []int{10, 25, 50, 100}

// ValidPageSize reports whether n is a selectable page size.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if n == s {
			return true
		}
	}
	return false
}

// Preferences are per-account display preferences. They are persisted as
// a convenience, not a contract; defaults apply when nothing is stored.
type Preferences struct {
	PageSize int    `json:"page_size"`
	ViewMode string `json:"view_mode"`
	ViewSize string `json:"view_size"`
}

// DefaultPreferences returns the defaults applied on a cache miss.
func DefaultPreferences() Preferences {
	return Preferences{
		PageSize: 25,
		ViewMode: "table",
		ViewSize: "comfortable",
	}
}
