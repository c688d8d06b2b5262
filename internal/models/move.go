package models

// Move is a request to relocate a deal within or across columns.
// An empty DestStage means the gesture ended outside any column.
type Move struct {
	DealID      string  `json:"deal_id"`
	SourceStage StageID `json:"source_stage"`
	SourceIndex int     `json:"source_index"`
	DestStage   StageID `json:"dest_stage"`
	DestIndex   int     `json:"dest_index"`
}

// MoveKind describes what applying a move did
type MoveKind int

const (
	// MoveCancelled means no destination was resolved; nothing changed
	MoveCancelled MoveKind = iota
	// MoveNoOp means source and destination were identical; nothing changed
	MoveNoOp
	// MoveReordered means the deal changed position inside its column
	MoveReordered
	// MoveTransitioned means the deal changed column and stage
	MoveTransitioned
)

// String returns a short name for the kind
func (k MoveKind) String() string {
	switch k {
	case MoveCancelled:
		return "cancelled"
	case MoveNoOp:
		return "noop"
	case MoveReordered:
		return "reordered"
	case MoveTransitioned:
		return "transitioned"
	default:
		return "unknown"
	}
}

// MoveResult reports the outcome of a move
type MoveResult struct {
	Kind  MoveKind
	Deal  *Deal // Deal after the move; nil when cancelled
	Index int   // Final position in the destination column
}

// Changed reports whether the move mutated the board
func (r MoveResult) Changed() bool {
	return r.Kind == MoveReordered || r.Kind == MoveTransitioned
}
