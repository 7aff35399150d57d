package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lithammer/dedent"

	"github.com/raine/photo-pricer/internal/recognizer"
	"github.com/raine/photo-pricer/internal/storage"
)

const (
	maxListedItems = 5
	maxTitleLength = 60
)

func formatReplyText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func parseCommand(s string) (string, []string) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return "", nil
	}
	// Commands in groups arrive as /cmd@botname
	command, _, _ := strings.Cut(parts[0], "@")
	return command, parts[1:]
}

func pluralize(singular string, plural string, count int) string {
	var s string
	if count == 1 {
		s = singular
	} else {
		s = plural
	}
	return fmt.Sprintf("%d %s", count, s)
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// formatPrice prints v with the currency's symbol. Prices without a currency
// are USD, the same default the price extractor uses.
func formatPrice(v float64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	if sym, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%.2f", sym, v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

// formatResult renders a recognition result as a Markdown reply.
func formatResult(res *recognizer.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*%s*\n", escape(res.Name))
	if res.Brand != "" {
		fmt.Fprintf(&sb, "Brand: %s\n", escape(res.Brand))
	}
	if res.Model != "" {
		fmt.Fprintf(&sb, "Model: %s\n", escape(res.Model))
	}
	fmt.Fprintf(&sb, "Confidence: %.0f%%\n", res.Confidence*100)
	fmt.Fprintf(&sb, "Category: %s, condition: %s\n\n", escape(res.Category), escape(res.Condition))

	if res.Pricing.Count == 0 {
		sb.WriteString(MsgNoPrices + "\n")
	} else {
		fmt.Fprintf(&sb, "💰 Suggested price: *%s*\n", formatPrice(res.Pricing.Suggested, res.Pricing.Currency))
		fmt.Fprintf(&sb, "Average %s, range %s - %s (%s)\n",
			formatPrice(res.Pricing.Average, res.Pricing.Currency),
			formatPrice(res.Pricing.Min, res.Pricing.Currency),
			formatPrice(res.Pricing.Max, res.Pricing.Currency),
			pluralize("price", "prices", res.Pricing.Count))
	}

	if len(res.SimilarItems) > 0 {
		sb.WriteString("\n" + MsgSimilarItems + "\n")
		for i, item := range res.SimilarItems {
			if i == maxListedItems {
				break
			}
			fmt.Fprintf(&sb, "• [%s](%s)", escape(truncate(item.Title, maxTitleLength)), item.URL)
			if item.Price > 0 {
				sb.WriteString(" " + formatPrice(item.Price, item.Currency))
			}
			if item.Platform != "" {
				fmt.Fprintf(&sb, " (%s)", escape(item.Platform))
			}
			sb.WriteString("\n")
		}
	}

	if res.Description != "" {
		fmt.Fprintf(&sb, "\n%s", escape(res.Description))
	}

	return strings.TrimSpace(sb.String())
}

func formatHistory(recs []storage.Recognition, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, MsgHistoryHeader, total)
	for _, r := range recs {
		fmt.Fprintf(&sb, "• %s *%s*", r.CreatedAt.Format("2006-01-02 15:04"), escape(r.Name))
		if r.SuggestedPrice > 0 {
			sb.WriteString(" ~ " + formatPrice(r.SuggestedPrice, r.Currency))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
