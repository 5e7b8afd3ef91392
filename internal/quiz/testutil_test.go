package quiz

import (
	"math/rand/v2"

	"vocab-drill-service/internal/domain"
)

const today = "2026-10-16"

func seeded() Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func catBook() *Book {
	return &Book{Words: []domain.WordEntry{
		{Primary: "cat", Secondary: "feline", Meaning: "猫", Score: 0, AcquiredOn: today},
	}}
}

func sampleBook() *Book {
	return &Book{Words: []domain.WordEntry{
		{Primary: "cat", Secondary: "feline", Meaning: "猫", AcquiredOn: today},
		{Primary: "dog", Secondary: "canine", Meaning: "狗", AcquiredOn: today},
		{Primary: "big", Secondary: "large", Meaning: "大的", AcquiredOn: "2026-10-15", Score: -2},
		{Primary: "huge", Secondary: "enormous", Meaning: "巨大的", AcquiredOn: "2026-10-15", Score: 3},
		{Primary: "quick", Secondary: "fast", Meaning: "快的", AcquiredOn: "2026-10-14", Score: -1},
		{Primary: "rapid", Secondary: "swift", Meaning: "快的", AcquiredOn: "2026-10-14"},
		{Primary: "happy", Secondary: "glad", Meaning: "高兴的", AcquiredOn: "2026-10-14", Score: 6},
	}}
}
