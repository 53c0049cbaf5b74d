package game

import "math/rand/v2"

// SelectNext picks the next question: a uniform choice among unused
// entries at or below difficulty, paired with a uniform variant. If the
// current tier is exhausted the difficulty is widened by exactly one
// before retrying; the returned difficulty reflects that bump so the
// caller can adopt it. ok is false when no unused entry exists even at
// the widened tier; the caller must treat that as end of game, not as
// an error.
//
// Only country names are deduplicated. A variant may repeat across
// countries within a session.
//
// The caller must mark the chosen country used immediately, before the
// answer is known, so an abandoned round still never repeats.
func (p Pool) SelectNext(difficulty int, used map[string]struct{}, rng *rand.Rand) (Question, int, bool) {
	avail := p.available(difficulty, used)
	if len(avail) == 0 && difficulty < MaxDifficulty {
		difficulty++
		avail = p.available(difficulty, used)
	}
	if len(avail) == 0 {
		return Question{}, difficulty, false
	}

	return Question{
		Country: avail[rng.IntN(len(avail))],
		Variant: variants[rng.IntN(len(variants))],
	}, difficulty, true
}

func (p Pool) available(difficulty int, used map[string]struct{}) []CountryEntry {
	var avail []CountryEntry
	for _, c := range p {
		if c.Difficulty > difficulty {
			continue
		}
		if _, ok := used[c.Name]; ok {
			continue
		}
		avail = append(avail, c)
	}
	return avail
}
