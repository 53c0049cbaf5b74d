// Package game implements the quiz session core: the country pool,
// question selection, answer evaluation, and the session state machine.
// It has no I/O; persistence and transport live elsewhere.
package game

// CountryEntry is one playable country. Entries are static and never
// mutated after the pool is built; Name is unique across the pool.
type CountryEntry struct {
	Name       string `json:"name"`
	Capital    string `json:"capital"`
	Code       string `json:"code"` // ISO 3166-1 alpha-2
	Difficulty int    `json:"difficulty"`
}

// FlagEmoji renders the country code as a regional-indicator flag.
func (c CountryEntry) FlagEmoji() string {
	flag := make([]rune, 0, 2)
	for _, r := range c.Code {
		if r >= 'A' && r <= 'Z' {
			flag = append(flag, 0x1F1E6+r-'A')
		}
	}
	return string(flag)
}

// Pool is the static list of playable countries.
type Pool []CountryEntry

// Remaining counts unused entries at or below the given difficulty.
func (p Pool) Remaining(difficulty int, used map[string]struct{}) int {
	n := 0
	for _, c := range p {
		if c.Difficulty <= difficulty {
			if _, ok := used[c.Name]; !ok {
				n++
			}
		}
	}
	return n
}

// DefaultPool returns the built-in country set, tiered 1 (well known)
// to 3 (obscure capitals).
func DefaultPool() Pool {
	return Pool{
		{Name: "France", Capital: "Paris", Code: "FR", Difficulty: 1},
		{Name: "Germany", Capital: "Berlin", Code: "DE", Difficulty: 1},
		{Name: "Italy", Capital: "Rome", Code: "IT", Difficulty: 1},
		{Name: "Spain", Capital: "Madrid", Code: "ES", Difficulty: 1},
		{Name: "United Kingdom", Capital: "London", Code: "GB", Difficulty: 1},
		{Name: "Japan", Capital: "Tokyo", Code: "JP", Difficulty: 1},
		{Name: "Australia", Capital: "Canberra", Code: "AU", Difficulty: 2},
		{Name: "Brazil", Capital: "Brasília", Code: "BR", Difficulty: 2},
		{Name: "Canada", Capital: "Ottawa", Code: "CA", Difficulty: 2},
		{Name: "India", Capital: "New Delhi", Code: "IN", Difficulty: 2},
		{Name: "South Africa", Capital: "Cape Town", Code: "ZA", Difficulty: 2},
		{Name: "Netherlands", Capital: "Amsterdam", Code: "NL", Difficulty: 2},
		{Name: "Switzerland", Capital: "Bern", Code: "CH", Difficulty: 2},
		{Name: "Turkey", Capital: "Ankara", Code: "TR", Difficulty: 2},
		{Name: "Kazakhstan", Capital: "Nur-Sultan", Code: "KZ", Difficulty: 3},
		{Name: "Myanmar", Capital: "Naypyidaw", Code: "MM", Difficulty: 3},
		{Name: "Sri Lanka", Capital: "Sri Jayawardenepura Kotte", Code: "LK", Difficulty: 3},
		{Name: "Côte d'Ivoire", Capital: "Yamoussoukro", Code: "CI", Difficulty: 3},
		{Name: "Palau", Capital: "Ngerulmud", Code: "PW", Difficulty: 3},
		{Name: "Benin", Capital: "Porto-Novo", Code: "BJ", Difficulty: 3},
		{Name: "Bolivia", Capital: "Sucre", Code: "BO", Difficulty: 3},
		{Name: "Montenegro", Capital: "Podgorica", Code: "ME", Difficulty: 3},
	}
}
