package amount

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"voltage_wallet_demo/models"
)

var printer = message.NewPrinter(language.English)

// Display is the two-line rendering of an amount.
type Display struct {
	Headline string `json:"headline"`
	Subline  string `json:"subline"`
}

// Format renders a as a headline and a precise subline. assets is keyed by
// normalized currency (see models.SupportedAssets.ByCurrency) and may be nil.
func Format(a models.Amount, assets map[models.Currency]models.NamedAsset) Display {
	cur := a.Currency.Normalized()
	switch {
	case cur == models.CurrencyBTC || a.Unit.IsMsats():
		return formatBTC(a)
	case cur.IsAsset():
		meta, ok := assets[cur]
		name := meta.Name
		if !ok || name == "" {
			name = shortKey(cur.AssetKey())
		}
		return FormatAsset(a.Amount, meta.DecimalDisplay, name)
	}
	return Display{
		Headline: strings.TrimSpace(Group(a.Amount) + " " + string(a.Unit)),
		Subline:  string(a.Currency),
	}
}

func formatBTC(a models.Amount) Display {
	sats := decimal.NewFromInt(a.Amount)
	if a.Unit.IsMsats() {
		sats = MsatsToSats(a.Amount)
	}
	return Display{
		Headline: Group(sats.Floor().IntPart()) + " sats",
		Subline:  sats.Shift(-8).StringFixed(8) + " BTC",
	}
}

// FormatAsset renders base units of an asset with decimals fraction digits.
func FormatAsset(baseUnits int64, decimals int32, name string) Display {
	whole := BaseUnitsToWhole(baseUnits, decimals)
	return Display{
		Headline: FormatDecimal(whole, min(4, decimals), min(8, max(4, decimals))) + " " + name,
		Subline:  Group(baseUnits) + " base units",
	}
}

// FormatSats renders an msat amount as grouped sats, e.g. for ledger rows.
func FormatSats(msats int64) string {
	return FormatDecimal(MsatsToSats(msats), 0, 3)
}

// Group formats an integer with thousands separators.
func Group(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatDecimal renders d rounded to maxFrac digits, keeping at least minFrac
// fraction digits, with a grouped integer part.
func FormatDecimal(d decimal.Decimal, minFrac, maxFrac int32) string {
	if minFrac < 0 {
		minFrac = 0
	}
	if maxFrac < minFrac {
		maxFrac = minFrac
	}
	sign := ""
	r := d.Round(maxFrac)
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	fixed := r.StringFixed(maxFrac)
	intPart, frac, _ := strings.Cut(fixed, ".")
	for int32(len(frac)) > minFrac && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}
	out := sign + groupDigits(intPart)
	if frac != "" {
		out += "." + frac
	}
	return out
}

func groupDigits(digits string) string {
	n, err := decimal.NewFromString(digits)
	if err != nil || !n.IsInteger() || len(digits) > 18 {
		return digits
	}
	return Group(n.IntPart())
}

func shortKey(key string) string {
	if len(key) <= 8 {
		return key + "…"
	}
	return key[:8] + "…"
}
