package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vocab-drill-service/internal/domain"
)

func TestParseBulk(t *testing.T) {
	text := `
cat=feline=猫
 dog , canine , 狗，犬

big,large,大的,巨大的
ignored
kind=sort=种类=类型
apple,苹果
=x=y
`
	got := ParseBulk(text, today)
	require.Equal(t, []domain.WordEntry{
		{Primary: "cat", Secondary: "feline", Meaning: "猫", AcquiredOn: today},
		{Primary: "dog", Secondary: "canine", Meaning: "狗，犬", AcquiredOn: today},
		{Primary: "big", Secondary: "large", Meaning: "大的,巨大的", AcquiredOn: today},
		{Primary: "kind", Secondary: "sort", Meaning: "种类=类型", AcquiredOn: today},
		{Primary: "apple", Meaning: "苹果", AcquiredOn: today},
	}, got)
}

func TestParseBulkEmpty(t *testing.T) {
	require.Empty(t, ParseBulk("   \n\r\n ", today))
}
