package core

// Complexity holds derived statement metrics. The metrics are informational
// only; nothing in the engine gates on them.
type Complexity struct {
	Joins      int `json:"joins" yaml:"joins"`
	Subqueries int `json:"subqueries" yaml:"subqueries"`
	Functions  int `json:"functions" yaml:"functions"`
	Aggregates int `json:"aggregates" yaml:"aggregates"`
	Windows    int `json:"windows" yaml:"windows"`
	CTEs       int `json:"ctes" yaml:"ctes"`
}

// Score sums the weighted metrics into a single difficulty number.
func (c Complexity) Score() int {
	return c.Joins*2 + c.Subqueries*3 + c.Functions + c.Aggregates + c.Windows*3 + c.CTEs*2
}

// Difficulty classifies the statement for reporting.
func (c Complexity) Difficulty() string {
	switch score := c.Score(); {
	case score >= 20:
		return "hard"
	case score >= 8:
		return "moderate"
	default:
		return "simple"
	}
}
