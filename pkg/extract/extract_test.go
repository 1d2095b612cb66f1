package extract

import (
	"reflect"
	"testing"
)

func TestAmount_PatternPriority(t *testing.T) {
	e := New()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"dollar per user", "Rain: $50 per user (USDT)", "$50 per user"},
		{"dollar slash user", "Prize $1,250.50/user today", "$1,250.50/user"},
		{"dollar plain", "won $300 yesterday", "$300"},
		{"naira symbol", "drop ₦5,000 per user now", "₦5,000 per user"},
		{"ngn code", "NGN 2500 for everyone", "NGN 2500"},
		{"named currency", "Naira 1,000 giveaway", "Naira 1,000"},
		{"bare per user", "giving 25 per user tonight", "25 per user"},
		{"naira beats dollar", "₦900 per user or $2", "₦900 per user"},
		{"none", "no amounts mentioned", NotSpecified},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.Amount(tc.text); got != tc.want {
				t.Errorf("Amount(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestCurrency(t *testing.T) {
	e := New()

	cases := []struct {
		text string
		want string
	}{
		{"$100 per user (USDT)", "USDT"},
		{"drop in (XRP) now", "XRP"},
		{"(abc) lowercase ignored", DefaultCurrency},
		{"(AB) too short", DefaultCurrency},
		{"no code at all", DefaultCurrency},
	}

	for _, tc := range cases {
		if got := e.Currency(tc.text); got != tc.want {
			t.Errorf("Currency(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestClassifyLine(t *testing.T) {
	cases := []struct {
		line string
		want LineKind
	}{
		{"👥 Users: Alice, Bob", LineRecipients},
		{"🎁 By: admin", LineAttribution},
		{"By: rain-bot", LineAttribution},
		{"by: rain-bot", LineAttribution},
		{"💵 Amount: $5", LineOther},
		{"", LineOther},
	}

	for _, tc := range cases {
		if got := ClassifyLine(tc.line); got != tc.want {
			t.Errorf("ClassifyLine(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestDetails(t *testing.T) {
	e := New()

	text := "🌧 Nigeria Rain: $100 per user (USDT)\n👥 Users: Alice, Bob\n🎁 By: admin"
	users, attribution := e.Details(text)

	if !reflect.DeepEqual(users, []string{"Alice", "Bob"}) {
		t.Errorf("users = %v, want [Alice Bob]", users)
	}
	if attribution != "By: admin" {
		t.Errorf("attribution = %q, want %q", attribution, "By: admin")
	}
}

func TestDetails_AttributionWithoutByPrefix(t *testing.T) {
	e := New()

	_, attribution := e.Details("🎁 rain-bot")
	if attribution != "By: rain-bot" {
		t.Errorf("attribution = %q, want %q", attribution, "By: rain-bot")
	}
}

func TestDetails_LastLineWins(t *testing.T) {
	e := New()

	text := "👥 Users: Alice\n👥 Users: Bob, Carol\n🎁 By: first\n🎁 By: second"
	users, attribution := e.Details(text)

	if !reflect.DeepEqual(users, []string{"Bob", "Carol"}) {
		t.Errorf("users = %v, want [Bob Carol]", users)
	}
	if attribution != "By: second" {
		t.Errorf("attribution = %q, want %q", attribution, "By: second")
	}
}

func TestDetails_PreservesOrderAndDuplicates(t *testing.T) {
	e := New()

	users, _ := e.Details("👥 Winners: zed ,  anna,zed, ,bob")
	if !reflect.DeepEqual(users, []string{"zed", "anna", "zed", "bob"}) {
		t.Errorf("users = %v", users)
	}
}

func TestDetails_RecipientLineWithoutColon(t *testing.T) {
	e := New()

	users, _ := e.Details("👥 just some people")
	if users != nil {
		t.Errorf("expected no users, got %v", users)
	}
}

func TestExtract(t *testing.T) {
	e := New()

	a := e.Extract("🌧 Nigeria Rain: $100 per user (USDT)\n👥 Users: Alice, Bob\n🎁 By: admin")

	if a.Amount != "$100 per user" {
		t.Errorf("Amount = %q", a.Amount)
	}
	if a.Currency != "USDT" {
		t.Errorf("Currency = %q", a.Currency)
	}
	if a.UserCount() != 2 {
		t.Errorf("UserCount = %d", a.UserCount())
	}
	if a.Attribution != "By: admin" {
		t.Errorf("Attribution = %q", a.Attribution)
	}
	if a.Body == "" {
		t.Error("Body should not be empty")
	}
}
