package model

// TableResource represents a row in the `tables` table.  Only active
// tables count toward the occupancy denominator.
type TableResource struct {
	ID       string `json:"id"`        // tables.id
	Name     string `json:"name"`      // tables.name
	Capacity int    `json:"capacity"`  // tables.capacity
	IsActive bool   `json:"is_active"` // tables.is_active
}
