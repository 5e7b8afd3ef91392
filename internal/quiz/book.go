package quiz

import (
	"sort"

	"vocab-drill-service/internal/domain"
)

// Book is a user's word list together with their wrong-answer set. It is not
// safe for concurrent use; callers serialize access.
type Book struct {
	Words []domain.WordEntry
	Wrong []domain.WrongEntry
}

// NewBook copies the lists out of a user record.
func NewBook(record domain.UserRecord) *Book {
	return &Book{
		Words: append([]domain.WordEntry(nil), record.Words...),
		Wrong: append([]domain.WrongEntry(nil), record.Wrong...),
	}
}

// Snapshot returns base with its lists replaced by copies of the book's lists.
func (b *Book) Snapshot(base domain.UserRecord) domain.UserRecord {
	out := base.Clone()
	out.Words = append([]domain.WordEntry(nil), b.Words...)
	out.Wrong = append([]domain.WrongEntry(nil), b.Wrong...)
	return out
}

func (b *Book) index(key domain.EntryKey) int {
	for i := range b.Words {
		if b.Words[i].Key() == key {
			return i
		}
	}
	return -1
}

// Entry looks up a word entry by identity.
func (b *Book) Entry(key domain.EntryKey) (domain.WordEntry, bool) {
	if i := b.index(key); i >= 0 {
		return b.Words[i], true
	}
	return domain.WordEntry{}, false
}

// AdjustScore adds delta to the entry's score and returns the new score. It
// reports false when the entry is no longer in the book.
func (b *Book) AdjustScore(key domain.EntryKey, delta int) (int, bool) {
	i := b.index(key)
	if i < 0 {
		return 0, false
	}
	b.Words[i].Score += delta
	return b.Words[i].Score, true
}

// WrongIndex returns the position of the wrong entry for meaning, or -1.
func (b *Book) WrongIndex(meaning string) int {
	for i := range b.Wrong {
		if b.Wrong[i].Meaning == meaning {
			return i
		}
	}
	return -1
}

// AddWrong inserts a wrong entry unless one with the same meaning exists.
func (b *Book) AddWrong(entry domain.WrongEntry) bool {
	if b.WrongIndex(entry.Meaning) >= 0 {
		return false
	}
	b.Wrong = append(b.Wrong, entry)
	return true
}

// RemoveWrongAt deletes the wrong entry at position i.
func (b *Book) RemoveWrongAt(i int) (domain.WrongEntry, error) {
	if i < 0 || i >= len(b.Wrong) {
		return domain.WrongEntry{}, domain.ErrIndexOutOfRange
	}
	removed := b.Wrong[i]
	b.Wrong = append(b.Wrong[:i:i], b.Wrong[i+1:]...)
	return removed, nil
}

// RemoveWrong deletes the wrong entry for meaning if present.
func (b *Book) RemoveWrong(meaning string) bool {
	i := b.WrongIndex(meaning)
	if i < 0 {
		return false
	}
	_, _ = b.RemoveWrongAt(i)
	return true
}

// Import adds entries whose identity is not already present and returns how
// many were added. New entries go in front, then the list is stably ordered
// by acquisition date, oldest first.
func (b *Book) Import(entries []domain.WordEntry) int {
	seen := make(map[domain.EntryKey]struct{}, len(b.Words)+len(entries))
	for _, w := range b.Words {
		seen[w.Key()] = struct{}{}
	}
	added := make([]domain.WordEntry, 0, len(entries))
	for _, e := range entries {
		if e.Primary == "" || e.Meaning == "" {
			continue
		}
		if _, ok := seen[e.Key()]; ok {
			continue
		}
		seen[e.Key()] = struct{}{}
		added = append(added, e)
	}
	if len(added) == 0 {
		return 0
	}
	b.Words = append(added, b.Words...)
	sort.SliceStable(b.Words, func(i, j int) bool {
		return b.Words[i].AcquiredOn < b.Words[j].AcquiredOn
	})
	return len(added)
}
