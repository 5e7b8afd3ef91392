package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vocab-drill-service/internal/domain"
)

func TestAddWrongDeduplicatesByMeaning(t *testing.T) {
	book := &Book{}
	require.True(t, book.AddWrong(domain.WrongEntry{Meaning: "猫", Primary: "cat", Secondary: "feline"}))
	require.False(t, book.AddWrong(domain.WrongEntry{Meaning: "猫", Primary: "kitty"}))
	require.Len(t, book.Wrong, 1)
	require.Equal(t, "cat", book.Wrong[0].Primary)
}

func TestRemoveWrongAt(t *testing.T) {
	book := &Book{Wrong: []domain.WrongEntry{{Meaning: "a"}, {Meaning: "b"}, {Meaning: "c"}}}

	removed, err := book.RemoveWrongAt(1)
	require.NoError(t, err)
	require.Equal(t, "b", removed.Meaning)
	require.Equal(t, []domain.WrongEntry{{Meaning: "a"}, {Meaning: "c"}}, book.Wrong)

	_, err = book.RemoveWrongAt(2)
	require.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	_, err = book.RemoveWrongAt(-1)
	require.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestAdjustScoreMissingEntry(t *testing.T) {
	book := catBook()
	_, ok := book.AdjustScore(domain.EntryKey{Primary: "dog"}, 1)
	require.False(t, ok)

	score, ok := book.AdjustScore(domain.EntryKey{Primary: "cat", Secondary: "feline"}, -1)
	require.True(t, ok)
	require.Equal(t, -1, score)
}

func TestImportSkipsDuplicatesAndSortsByDate(t *testing.T) {
	book := &Book{Words: []domain.WordEntry{
		{Primary: "old", Meaning: "旧的", AcquiredOn: "2026-01-01"},
		{Primary: "cat", Secondary: "feline", Meaning: "猫", AcquiredOn: "2026-05-01"},
	}}

	added := book.Import([]domain.WordEntry{
		{Primary: "cat", Secondary: "feline", Meaning: "猫咪", AcquiredOn: today},
		{Primary: "dog", Secondary: "canine", Meaning: "狗", AcquiredOn: today},
		{Primary: "dog", Secondary: "canine", Meaning: "狗", AcquiredOn: today},
		{Primary: "", Meaning: "空", AcquiredOn: today},
	})
	require.Equal(t, 1, added)
	require.Len(t, book.Words, 3)
	require.Equal(t, "old", book.Words[0].Primary)
	require.Equal(t, "cat", book.Words[1].Primary)
	require.Equal(t, "猫", book.Words[1].Meaning)
	require.Equal(t, "dog", book.Words[2].Primary)
}

func TestSnapshotIsIndependent(t *testing.T) {
	book := catBook()
	record := book.Snapshot(domain.UserRecord{ID: "1", Username: "amy"})
	book.Words[0].Score = 9
	book.AddWrong(domain.WrongEntry{Meaning: "猫"})

	require.Equal(t, 0, record.Words[0].Score)
	require.Empty(t, record.Wrong)
	require.Equal(t, "amy", record.Username)
}
