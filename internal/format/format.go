package format

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printers = map[string]*message.Printer{}

func printer(lang string) *message.Printer {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		tag = language.English
	}
	key := tag.String()
	if p, ok := printers[key]; ok {
		return p
	}
	return message.NewPrinter(tag)
}

func init() {
	for _, tag := range []language.Tag{language.English, language.MustParse("en-ZA")} {
		printers[tag.String()] = message.NewPrinter(tag)
	}
}

// FmtCurrency formats a whole-unit amount with its currency symbol.
// Example: FmtCurrency(2999, "ZAR", "en") => "R2,999"
func FmtCurrency(amount int64, currency, lang string) string {
	p := printer(lang)
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "ZAR", "":
		if amount < 0 {
			return p.Sprintf("-R%d", -amount)
		}
		return p.Sprintf("R%d", amount)
	case "USD":
		if amount < 0 {
			return p.Sprintf("-$%d", -amount)
		}
		return p.Sprintf("$%d", amount)
	default:
		return p.Sprintf("%s %d", strings.ToUpper(currency), amount)
	}
}

// FmtDate formats t in a short, human-friendly form.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "iso":
		return t.Format("2006-01-02")
	default:
		return t.Format("2 January 2006")
	}
}

// Stars renders a rating as filled and empty stars out of five.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// Rating formats an average rating with one decimal place.
func Rating(avg float64) string {
	return message.NewPrinter(language.English).Sprintf("%.1f", avg)
}
