package domain

// MatchMethod identifies which matcher produced a candidate.
type MatchMethod string

// Available match methods.
const (
	MatchMethodFuzzy    MatchMethod = "fuzzy"
	MatchMethodSemantic MatchMethod = "semantic"
)

// String returns the string representation.
func (m MatchMethod) String() string {
	return string(m)
}

// Recommendation is the action suggested for an upload.
type Recommendation string

// Available recommendations.
const (
	// RecommendJoin places the student into the matched group automatically.
	RecommendJoin Recommendation = "join"

	// RecommendCreate starts a new group for this offering.
	RecommendCreate Recommendation = "create"

	// RecommendConfirm asks the student whether the best match is their course.
	RecommendConfirm Recommendation = "confirm"
)

// IsValid returns true if the recommendation is recognised.
func (r Recommendation) IsValid() bool {
	switch r {
	case RecommendJoin, RecommendCreate, RecommendConfirm:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Recommendation) String() string {
	return string(r)
}

// Description returns a human-readable description of the recommendation.
func (r Recommendation) Description() string {
	switch r {
	case RecommendJoin:
		return "Join the existing study group"
	case RecommendCreate:
		return "Create a new study group"
	case RecommendConfirm:
		return "Ask the student to confirm the suggested group"
	default:
		return "Unknown"
	}
}

// MatchCandidate is one scored comparison result. It is never persisted.
type MatchCandidate struct {
	Signature  Signature   `json:"signature"`
	Similarity float64     `json:"similarity"`
	Method     MatchMethod `json:"method"`

	// Reason is for display only and never affects ranking.
	Reason string `json:"reason"`
}

// Decision merges fuzzy and semantic results into a recommendation.
// It is a pure function of the new record and the corpus at query time.
type Decision struct {
	FuzzyMatches    []MatchCandidate `json:"fuzzy_matches"`
	SemanticMatches []MatchCandidate `json:"semantic_matches"`
	BestMatch       *MatchCandidate  `json:"best_match"`
	Recommendation  Recommendation   `json:"recommendation"`
}

// ProcessResult is everything produced for one upload.
type ProcessResult struct {
	Record    SyllabusRecord `json:"record"`
	Signature Signature      `json:"signature"`
	Embedding Embedding      `json:"embedding"`
	Decision  Decision       `json:"decision"`
}
