package game

// Variant is the framing of a question.
type Variant string

const (
	// VariantCapital asks for the capital of a country.
	VariantCapital Variant = "capital"
	// VariantFlag shows a flag and asks for the country.
	VariantFlag Variant = "flag"
	// VariantReverse names a capital and asks for the country.
	VariantReverse Variant = "reverse"
)

var variants = []Variant{VariantCapital, VariantFlag, VariantReverse}

// Question pairs a country with a chosen variant. A session holds at
// most one live Question at a time and replaces it, never mutates it.
type Question struct {
	Country CountryEntry `json:"country"`
	Variant Variant      `json:"variant"`
}

// CorrectAnswer is the canonical answer for the question's variant:
// the capital for VariantCapital, the country name for the other two.
// Reverse shows the capital, so the country is the unknown.
func (q Question) CorrectAnswer() string {
	if q.Variant == VariantCapital {
		return q.Country.Capital
	}
	return q.Country.Name
}

// LogEntry records one resolved question. Entries are immutable once
// appended to the session log.
type LogEntry struct {
	Country       string  `json:"country"`
	Code          string  `json:"code"`
	Variant       Variant `json:"variant"`
	Difficulty    int     `json:"difficulty"`
	UserAnswer    string  `json:"userAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	Points        int     `json:"points"`
}
