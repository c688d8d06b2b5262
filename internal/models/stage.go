package models

// StageID identifies a pipeline stage and the column that holds its deals
type StageID string

// Default pipeline stages, in left-to-right board order
const (
	StageDiscovery     StageID = "discovery"
	StageQualification StageID = "qualification"
	StageProposal      StageID = "proposal"
	StageNegotiation   StageID = "negotiation"
	StageClosedWon     StageID = "closed-won"
	StageClosedLost    StageID = "closed-lost"
)

// Stage is the configured metadata of a single pipeline stage
type Stage struct {
	ID    StageID
	Title string
	Color string // Hex color code (e.g., "#7D56F4")
}

// DefaultStages returns the default stage list in board order
func DefaultStages() []Stage {
	return []Stage{
		{ID: StageDiscovery, Title: "Discovery", Color: "#6B7280"},
		{ID: StageQualification, Title: "Qualification", Color: "#3B82F6"},
		{ID: StageProposal, Title: "Proposal", Color: "#EAB308"},
		{ID: StageNegotiation, Title: "Negotiation", Color: "#F97316"},
		{ID: StageClosedWon, Title: "Closed Won", Color: "#22C55E"},
		{ID: StageClosedLost, Title: "Closed Lost", Color: "#EF4444"},
	}
}
