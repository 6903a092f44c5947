package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
)

// FormatVerdict renders a single deal alert as Telegram HTML.
// Estimated quotes carry their confidence so the reader can judge
// how much to trust a synthetic price.
func FormatVerdict(verdict domain.DealVerdict) string {
	q := verdict.Quote

	var sb strings.Builder
	sb.WriteString("✈️ <b>DEAL FOUND!</b>\n\n")
	sb.WriteString(fmt.Sprintf("🛫 <b>%s</b>\n", q.Route.DisplayName))
	sb.WriteString(fmt.Sprintf("💶 <b>%.2f EUR</b> (threshold %.2f)\n", q.Price, verdict.Threshold))
	sb.WriteString(fmt.Sprintf("📉 You save %.2f EUR (%.1f%%)\n", verdict.SavingsAmount, verdict.SavingsPct))
	sb.WriteString(fmt.Sprintf("🔎 Source: %s", sourceLabel(q.Source)))
	if q.Source == domain.SourceEstimated {
		sb.WriteString(fmt.Sprintf(" (confidence %.0f%%)", q.Confidence*100))
	}
	sb.WriteString(fmt.Sprintf("\n🕐 Observed: %s", q.ObservedAt.Format("2006-01-02 15:04 MST")))

	return sb.String()
}

// FormatDigest renders a multi-route summary, cheapest deals first.
// Routes without a deal are listed below the deals for context.
func FormatDigest(verdicts []domain.DealVerdict) string {
	if len(verdicts) == 0 {
		return "ℹ️ No routes checked."
	}

	sorted := make([]domain.DealVerdict, len(verdicts))
	copy(sorted, verdicts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].IsDeal != sorted[j].IsDeal {
			return sorted[i].IsDeal
		}
		return sorted[i].Quote.Price < sorted[j].Quote.Price
	})

	deals := 0
	for _, v := range sorted {
		if v.IsDeal {
			deals++
		}
	}

	var sb strings.Builder
	if deals > 0 {
		sb.WriteString(fmt.Sprintf("✈️ <b>%d DEAL(S) FOUND!</b>\n\n", deals))
	} else {
		sb.WriteString("ℹ️ <b>No deals right now.</b>\n\n")
	}

	for _, v := range sorted {
		marker := "▫️"
		if v.IsDeal {
			marker = "🔥"
		}
		sb.WriteString(fmt.Sprintf("%s <code>%s</code> %.2f EUR", marker, v.Quote.Route.Key(), v.Quote.Price))
		if v.IsDeal {
			sb.WriteString(fmt.Sprintf(" (−%.1f%%)", v.SavingsPct))
		}
		if v.Quote.Source == domain.SourceEstimated {
			sb.WriteString(fmt.Sprintf(" · est. %.0f%%", v.Quote.Confidence*100))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func sourceLabel(source domain.QuoteSource) string {
	switch source {
	case domain.SourceTravelPayouts:
		return "TravelPayouts"
	case domain.SourceTequila:
		return "Kiwi Tequila"
	case domain.SourceFeed:
		return "live feed"
	case domain.SourceEstimated:
		return "estimated"
	default:
		return string(source)
	}
}
