package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"trade-journal/internal/models"
)

// FormatCurrency formats an amount with two decimals, comma thousands
// grouping and the given symbol, e.g. -$1,234.50.
func FormatCurrency(amount float64, symbol string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}

	fixed := decimal.NewFromFloat(amount).Abs().StringFixed(2)
	intPart, decPart, _ := strings.Cut(fixed, ".")

	result := symbol + groupThousands(intPart) + "." + decPart
	if amount < 0 && fixed != "0.00" {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPnL formats P&L with an explicit sign.
func FormatPnL(pnl float64, symbol string) string {
	formatted := FormatCurrency(pnl, symbol)
	if pnl > 0 && formatted != FormatCurrency(0, symbol) {
		return "+" + formatted
	}
	return formatted
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatRate formats an unsigned percentage such as a win rate.
func FormatRate(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// FormatRiskReward formats a risk-reward ratio.
func FormatRiskReward(rr float64) string {
	return fmt.Sprintf("1:%.2f", rr)
}

// FormatProfitFactor formats gross profit over gross loss. With no losses the
// factor is unbounded.
func FormatProfitFactor(profit, loss float64) string {
	if loss == 0 {
		if profit > 0 {
			return "∞"
		}
		return "-"
	}
	return fmt.Sprintf("%.2f", profit/loss)
}

// FormatQuantity formats a quantity without trailing zeros.
func FormatQuantity(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

// FormatPrice formats an optional price.
func FormatPrice(price *float64) string {
	if price == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *price)
}

// FormatStreak formats a current streak such as "3 WIN".
func FormatStreak(n int, kind models.Outcome) string {
	if n == 0 || kind == "" {
		return "none"
	}
	return fmt.Sprintf("%d %s", n, kind)
}

// FormatScore formats an optional 1-10 self-assessment mean.
func FormatScore(value float64, count int) string {
	if count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f/10 (%d)", value, count)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
