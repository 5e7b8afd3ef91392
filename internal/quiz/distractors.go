package quiz

import "vocab-drill-service/internal/domain"

// SelectDistractors draws up to count distinct items from pool, skipping
// anything in correct. Sampling is uniform and without replacement. When the
// pool is too small every eligible item is returned.
func SelectDistractors[T comparable](rnd Rand, correct, pool []T, count int) []T {
	if count <= 0 {
		return nil
	}
	seen := make(map[T]struct{}, len(correct)+len(pool))
	for _, c := range correct {
		seen[c] = struct{}{}
	}
	eligible := make([]T, 0, len(pool))
	for _, item := range pool {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		eligible = append(eligible, item)
	}

	// partial Fisher-Yates over the first n slots
	n := min(count, len(eligible))
	for i := 0; i < n; i++ {
		j := i + rnd.IntN(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}
	return eligible[:n]
}

// PickDecoyMeaning returns a random meaning other than target, or "" when the
// book holds no other meaning.
func PickDecoyMeaning(rnd Rand, target string, words []domain.WordEntry) string {
	meanings := make([]string, 0, len(words))
	seen := map[string]struct{}{target: {}}
	for _, w := range words {
		if _, ok := seen[w.Meaning]; ok {
			continue
		}
		seen[w.Meaning] = struct{}{}
		meanings = append(meanings, w.Meaning)
	}
	if len(meanings) == 0 {
		return ""
	}
	return meanings[rnd.IntN(len(meanings))]
}

// SelectHardDistractors picks distractor terms for hard mode. Entries sharing
// the target meaning are never used, and at most one entry carrying the decoy
// meaning contributes terms, so exactly one plausible decoy group appears.
func SelectHardDistractors(rnd Rand, target domain.WordEntry, decoyMeaning string, words []domain.WordEntry, count int) []string {
	if count <= 0 {
		return nil
	}
	correct := make(map[string]struct{}, 2)
	for _, t := range target.Key().Terms() {
		correct[t] = struct{}{}
	}

	candidates := make([]domain.WordEntry, 0, len(words))
	for _, w := range words {
		if w.Key() == target.Key() || w.Meaning == target.Meaning {
			continue
		}
		candidates = append(candidates, w)
	}
	rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	out := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	decoyUsed := false
	for _, w := range candidates {
		if len(out) >= count {
			break
		}
		if decoyMeaning != "" && w.Meaning == decoyMeaning {
			if decoyUsed {
				continue
			}
			decoyUsed = true
		}
		for _, term := range w.Key().Terms() {
			if len(out) >= count {
				break
			}
			if _, ok := correct[term]; ok {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}
