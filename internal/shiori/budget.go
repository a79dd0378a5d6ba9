package shiori

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Funya-okina/sightseeingLog/internal/models"
)

const detailLeader = "……"

// AggregateBudget walks raw budget categories and computes line and grand
// totals. A category missing its title or total is dropped whole; its absence
// never corrupts the totals of the valid categories. Detail lines need both a
// name and a non-null amount or they are dropped, without removing the parent
// category. A non-numeric total contributes zero to the grand total while the
// category still renders with its original display text.
func AggregateBudget(rawCategories []any) models.BudgetSummary {
	var summary models.BudgetSummary
	for _, raw := range rawCategories {
		obj, _ := raw.(map[string]any)
		title := ResolveString(obj, "title")
		total, hasTotal := ResolveField(obj, "total")
		if title == "" || !hasTotal || total == nil {
			continue
		}

		var lines []string
		for _, rawDetail := range ResolveSlice(obj, "details") {
			detail, _ := rawDetail.(map[string]any)
			name := ResolveString(detail, "name")
			amount, hasAmount := ResolveField(detail, "amount")
			if name == "" || !hasAmount || amount == nil {
				continue
			}
			lines = append(lines, name+detailLeader+formatYen(amount))
		}

		value := toNumber(total)
		summary.Rows = append(summary.Rows, models.BudgetRow{
			Title:        title,
			TotalDisplay: formatYen(total),
			TotalValue:   value,
			Details:      strings.Join(lines, "\n"),
		})
		summary.GrandTotal += value
	}
	return summary
}

// toNumber mirrors the lenient Number(x)||0 coercion: numeric strings parse,
// everything else counts as zero.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// formatYen prefixes a yen sign, keeping the original text of values that do
// not parse as numbers.
func formatYen(v any) string {
	switch n := v.(type) {
	case float64:
		return "¥" + formatAmount(n)
	case int:
		return "¥" + formatAmount(float64(n))
	case int64:
		return "¥" + formatAmount(float64(n))
	case string:
		return "¥" + strings.TrimSpace(n)
	default:
		return fmt.Sprintf("¥%v", v)
	}
}

// formatAmount renders whole yen without a fraction and keeps fractions
// otherwise (trip budgets are whole yen in practice).
func formatAmount(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
