package model

// GroupedItem is the dashboard aggregate of all items sharing a display
// name. Kind becomes KindMixed once both kinds are merged into the group.
type GroupedItem struct {
	Name       string   `json:"name"`
	Kind       ItemKind `json:"kind"`
	TotalCount int      `json:"total_count"`
	TotalCost  float64  `json:"total_cost"`
	TotalValue float64  `json:"total_value"`
}

// UnknownYear is the sentinel bucket for items without a year. Its bucket
// sorts after every numeric year regardless of magnitude.
const UnknownYear = -1

// YearBucket holds the items and totals for one year of a name group.
type YearBucket struct {
	Year       int     `json:"year"`
	Label      string  `json:"label"`
	TotalCount int     `json:"total_count"`
	TotalCost  float64 `json:"total_cost"`
	TotalValue float64 `json:"total_value"`
	Items      []Item  `json:"items"`
}

// YearBreakdown is the drill-down view for one display name. The totals
// span every bucket, not a paginated subset.
type YearBreakdown struct {
	Name       string       `json:"name"`
	Buckets    []YearBucket `json:"buckets"`
	TotalCount int          `json:"total_count"`
	TotalCost  float64      `json:"total_cost"`
	TotalValue float64      `json:"total_value"`
}
