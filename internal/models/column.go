package models

// Column represents the board column of one stage.
// DealIDs is ordered: index 0 is the top of the column.
type Column struct {
	Stage   StageID  `json:"stage"`    // Stage whose deals this column holds
	Title   string   `json:"title"`    // Display title
	Color   string   `json:"color"`    // Display color
	DealIDs []string `json:"deal_ids"` // Ordered deal identifiers
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	if c == nil {
		return nil
	}
	clone := *c
	clone.DealIDs = make([]string, len(c.DealIDs))
	copy(clone.DealIDs, c.DealIDs)
	return &clone
}

// Len returns the number of deals in the column
func (c *Column) Len() int {
	return len(c.DealIDs)
}

// IndexOf returns the position of dealID in the column, or -1
func (c *Column) IndexOf(dealID string) int {
	for i, id := range c.DealIDs {
		if id == dealID {
			return i
		}
	}
	return -1
}
