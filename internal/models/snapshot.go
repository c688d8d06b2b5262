package models

// Snapshot is a complete board state exchanged with persistence.
// Columns are in board order.
type Snapshot struct {
	Version int64     `json:"version"`
	Deals   []*Deal   `json:"deals"`
	Columns []*Column `json:"columns"`
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	clone := &Snapshot{
		Version: s.Version,
		Deals:   make([]*Deal, len(s.Deals)),
		Columns: make([]*Column, len(s.Columns)),
	}
	for i, d := range s.Deals {
		clone.Deals[i] = d.Clone()
	}
	for i, c := range s.Columns {
		clone.Columns[i] = c.Clone()
	}
	return clone
}
