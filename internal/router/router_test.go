package router

import (
	"testing"
)

func TestRouter_Route(t *testing.T) {
	r := New(DefaultConfig(), nil)

	tests := []struct {
		symbol        string
		wantDecision  Decision
		wantCanonical string
	}{
		{"RELIANCE.NS", Vendor, "RELIANCE"},
		{"TCS.BO", Vendor, "TCS"},
		{"AAPL", Mock, "AAPL"},
		{"^NSEI", Vendor, "NIFTY 50"},
		{"^BSESN", Vendor, "SENSEX"},
		{"NIFTY_50", Vendor, "NIFTY 50"},
		{"NIFTY_BANK", Vendor, "BANKNIFTY"},
		{"", Mock, ""},
		{"reliance.ns", Mock, "reliance.ns"}, // case-sensitive
		{".NS", Vendor, ""},
		{"NS", Mock, "NS"},
		{"INFY.NSX", Mock, "INFY.NSX"},
		{"^nsei", Mock, "^nsei"},
	}

	for _, tc := range tests {
		gotDecision, gotCanonical := r.Route(tc.symbol)
		if gotDecision != tc.wantDecision || gotCanonical != tc.wantCanonical {
			t.Errorf("Route(%q) = (%s, %q), want (%s, %q)",
				tc.symbol, gotDecision, gotCanonical, tc.wantDecision, tc.wantCanonical)
		}
	}
}

func TestRouter_Route_StacksSuffixesOnce(t *testing.T) {
	r := New(DefaultConfig(), nil)

	tests := []struct {
		input     string
		canonical string
	}{
		{"X.BO.NS", "X.BO"},
		{"X.NS.BO", "X.NS"},
		{"X.NS.NS", "X.NS"},
	}

	for _, tc := range tests {
		d, c := r.Route(tc.input)
		if d != Vendor || c != tc.canonical {
			t.Errorf("Route(%q) = (%s, %q), want (VENDOR, %q)", tc.input, d, c, tc.canonical)
		}
	}
}

func TestRouter_StripSuffix_NoRetrigger(t *testing.T) {
	r := New(DefaultConfig(), nil)

	tests := []struct {
		input    string
		expected string
	}{
		{"TCS.NS", "TCS"},
		{"TCS", "TCS"},
		{"TCS.BO.NS", "TCS.BO"},
		{"TCS.NS.BO", "TCS.NS"},
		{"A.NS.NS", "A.NS"},
		{"X.NSE", "X.NSE"},
	}

	for _, tc := range tests {
		if got := r.StripSuffix(tc.input); got != tc.expected {
			t.Errorf("StripSuffix(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestRouter_StripSuffix_Idempotent(t *testing.T) {
	r := New(DefaultConfig(), nil)

	for _, s := range []string{"TCS.NS", "INFY.BO", "AAPL", ""} {
		once := r.StripSuffix(s)
		if twice := r.StripSuffix(once); twice != once {
			t.Errorf("StripSuffix not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestRouter_LongestSuffixWins(t *testing.T) {
	r := New(Config{Suffixes: []string{"S", ".NS"}}, nil)

	decision, canonical := r.Route("TCS.NS")
	if decision != Vendor {
		t.Fatalf("expected vendor, got %s", decision)
	}
	if canonical != "TCS" {
		t.Errorf("expected TCS, got %q", canonical)
	}
}

func TestRouter_AliasBeforeSuffix(t *testing.T) {
	r := New(Config{
		Suffixes: []string{".NS"},
		Aliases:  []Alias{{Symbol: "BANK.NS", Canonical: "BANKNIFTY"}},
	}, nil)

	if got := r.Canonical("BANK.NS"); got != "BANKNIFTY" {
		t.Errorf("expected alias to win, got %q", got)
	}
}

func TestRouter_DuplicateAliasKeepsFirst(t *testing.T) {
	r := New(Config{
		Aliases: []Alias{
			{Symbol: "^NSEI", Canonical: "NIFTY 50"},
			{Symbol: "^NSEI", Canonical: "OTHER"},
		},
	}, nil)

	if got := r.Canonical("^NSEI"); got != "NIFTY 50" {
		t.Errorf("expected first alias, got %q", got)
	}
}

func TestRouter_EmptyConfigRoutesEverythingToMock(t *testing.T) {
	r := New(Config{Suffixes: []string{""}}, nil)

	for _, s := range []string{"RELIANCE.NS", "AAPL", ""} {
		if r.IsVendor(s) {
			t.Errorf("expected %q to route to mock", s)
		}
	}
}

func TestRouter_GetStats(t *testing.T) {
	r := New(DefaultConfig(), nil)
	stats := r.GetStats()

	if stats["aliases"] != 4 {
		t.Errorf("expected 4 aliases, got %v", stats["aliases"])
	}
}
