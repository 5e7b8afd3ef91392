package quiz

import (
	"sort"

	"vocab-drill-service/internal/domain"
)

// MeaningGroup lists the terms that share one meaning.
type MeaningGroup struct {
	Meaning string
	Terms   []string
}

// MasteryOf maps a score onto a mastery band.
func MasteryOf(score int) domain.Mastery {
	switch {
	case score <= -5:
		return domain.MasteryStruggling
	case score < 0:
		return domain.MasteryWeak
	case score == 0:
		return domain.MasteryNew
	case score <= 3:
		return domain.MasteryLearning
	default:
		return domain.MasteryMastered
	}
}

// GroupByDate partitions words by acquisition date, newest date first. Within
// a date, cards are ordered by score ascending so the weakest surface first.
func GroupByDate(words []domain.WordEntry) []domain.DateGroup {
	byDate := make(map[string][]domain.FlashCard)
	dates := make([]string, 0)
	for _, w := range words {
		if _, ok := byDate[w.AcquiredOn]; !ok {
			dates = append(dates, w.AcquiredOn)
		}
		byDate[w.AcquiredOn] = append(byDate[w.AcquiredOn], domain.FlashCard{
			Primary:   w.Primary,
			Secondary: w.Secondary,
			Meaning:   w.Meaning,
			Score:     w.Score,
			Mastery:   MasteryOf(w.Score),
		})
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	groups := make([]domain.DateGroup, 0, len(dates))
	for _, d := range dates {
		cards := byDate[d]
		sort.SliceStable(cards, func(i, j int) bool {
			return cards[i].Score < cards[j].Score
		})
		groups = append(groups, domain.DateGroup{Date: d, Cards: cards})
	}
	return groups
}

// GroupByMeaning collects the terms of each meaning in first-seen order.
func GroupByMeaning(words []domain.WordEntry) []MeaningGroup {
	pos := make(map[string]int)
	groups := make([]MeaningGroup, 0)
	for _, w := range words {
		i, ok := pos[w.Meaning]
		if !ok {
			i = len(groups)
			pos[w.Meaning] = i
			groups = append(groups, MeaningGroup{Meaning: w.Meaning})
		}
		for _, t := range w.Key().Terms() {
			if !containsString(groups[i].Terms, t) {
				groups[i].Terms = append(groups[i].Terms, t)
			}
		}
	}
	return groups
}

// TermMeanings indexes every term to its meaning. Later entries win on
// collisions.
func TermMeanings(words []domain.WordEntry) map[string]string {
	out := make(map[string]string, 2*len(words))
	for _, w := range words {
		for _, t := range w.Key().Terms() {
			out[t] = w.Meaning
		}
	}
	return out
}

// QuizDates returns the distinct acquisition dates, oldest first.
func QuizDates(words []domain.WordEntry) []string {
	seen := make(map[string]struct{})
	dates := make([]string, 0)
	for _, w := range words {
		if _, ok := seen[w.AcquiredOn]; ok {
			continue
		}
		seen[w.AcquiredOn] = struct{}{}
		dates = append(dates, w.AcquiredOn)
	}
	sort.Strings(dates)
	return dates
}

// BuildDeck renders the flashcard view of a book.
func BuildDeck(username string, b *Book) domain.Deck {
	return domain.Deck{
		Username:  username,
		Groups:    GroupByDate(b.Words),
		QuizDates: QuizDates(b.Words),
		Wrong:     append([]domain.WrongEntry{}, b.Wrong...),
		WordCount: len(b.Words),
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
