// Package market defines the per-market variant configuration. The two
// variants share all core logic and differ only in expiry-date
// conventions and price-history upstream.
package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantterm/backend/internal/marketcal"
)

// Market identifies a supported market variant.
type Market string

const (
	// CN is the domestic A-share market (Eastmoney history upstream).
	CN Market = "cn"
	// Global covers Japanese and international tickers (Yahoo upstream).
	Global Market = "global"
)

// Profile carries everything the core needs to know about a market
// variant: its expiry conventions and a default example symbol.
type Profile struct {
	Market        Market
	FuturesExpiry marketcal.ExpiryRule
	OptionExpiry  marketcal.ExpiryRule
	DefaultSymbol string
}

// Expiries returns the profile's expiry anchors for ModeExpiry generation.
func (p Profile) Expiries() []marketcal.ExpiryRule {
	return []marketcal.ExpiryRule{p.FuturesExpiry, p.OptionExpiry}
}

// ExpiryByLabel looks up one of the profile's expiry rules.
func (p Profile) ExpiryByLabel(label string) (marketcal.ExpiryRule, bool) {
	switch label {
	case p.FuturesExpiry.Label:
		return p.FuturesExpiry, true
	case p.OptionExpiry.Label:
		return p.OptionExpiry, true
	}
	return marketcal.ExpiryRule{}, false
}

var profiles = map[Market]Profile{
	CN: {
		Market: CN,
		// 股指期货交割日: 第3个周五
		FuturesExpiry: marketcal.ExpiryRule{Label: "futures-expiry", Weekday: time.Friday, Nth: 3},
		// 期权交割日: 第4个周三
		OptionExpiry:  marketcal.ExpiryRule{Label: "option-expiry", Weekday: time.Wednesday, Nth: 4},
		DefaultSymbol: "600519",
	},
	Global: {
		Market: Global,
		// SQ日: 第2金曜日
		FuturesExpiry: marketcal.ExpiryRule{Label: "sq-day", Weekday: time.Friday, Nth: 2},
		// オプション満期: 第3金曜日
		OptionExpiry:  marketcal.ExpiryRule{Label: "option-expiry", Weekday: time.Friday, Nth: 3},
		DefaultSymbol: "7974.T",
	},
}

// ProfileFor returns the profile for a market.
func ProfileFor(m Market) (Profile, error) {
	p, ok := profiles[m]
	if !ok {
		return Profile{}, fmt.Errorf("unknown market %q", m)
	}
	return p, nil
}

// Parse maps a user-supplied market name to a Market.
func Parse(s string) (Market, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cn", "a-share", "ashare", "":
		return CN, nil
	case "global", "jp", "intl":
		return Global, nil
	}
	return "", fmt.Errorf("unknown market %q", s)
}
