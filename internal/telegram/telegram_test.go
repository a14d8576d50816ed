package telegram

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/set-night/cafeloyalty/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8)
	parts := SplitMessage(text, 10)
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("a", 8)+"\n", parts[0])
	assert.Equal(t, strings.Repeat("b", 8), parts[1])

	long := strings.Repeat("☕", 25)
	parts = SplitMessage(long, 10)
	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 10)
	}
	assert.Equal(t, long, strings.Join(parts, ""))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `caf\_latte \*big\* \[x]`, EscapeMarkdown("caf_latte *big* [x]"))
	assert.Equal(t, "plain", EscapeMarkdown("plain"))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(0, 10))
	assert.Equal(t, "▓▓▓▓▓░░░░░", ProgressBar(50, 10))
	assert.Equal(t, "▓▓▓▓▓▓▓▓▓▓", ProgressBar(100, 10))
	assert.Equal(t, "▓▓▓▓▓▓▓▓▓▓", ProgressBar(140, 10))
	assert.Equal(t, "░░░░░", ProgressBar(-3, 5))
}

func TestPaginationRow(t *testing.T) {
	row := PaginationRow(0, 3, "shops_")
	require.Len(t, row, 2)
	assert.Equal(t, "1/3", row[0].Text)
	assert.Equal(t, "shops_1", row[1].CallbackData)

	row = PaginationRow(2, 3, "shops_")
	require.Len(t, row, 2)
	assert.Equal(t, "shops_1", row[0].CallbackData)
}

func TestLogFormats(t *testing.T) {
	a := &domain.Account{ID: uuid.New(), TelegramID: 42, FirstName: "Ann_B", Role: domain.RoleClient}
	r := domain.Redemption{OfferID: uuid.New(), Name: "Free latte", PointsCost: 50}

	msg := formatRedemptionLog(a, r, 10)
	assert.Contains(t, msg, `Ann\_B`)
	assert.Contains(t, msg, r.Code(a.ID))
	assert.Contains(t, msg, "*Balance:* 10 pts")

	msg = formatErrorLog("redeem", errors.New("boom"), time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	assert.Contains(t, msg, "`boom`")
	assert.Contains(t, msg, "2026-03-01 09:30:00")

	assert.NotContains(t, formatRegistrationLog(a), "Username")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *TelegramLogger
	assert.NotPanics(t, func() {
		l.LogError(t.Context(), "x", errors.New("y"))
	})
}
