package format

import (
	"strings"
	"testing"

	"github.com/tinyland-inc/rainrelay/pkg/classify"
	"github.com/tinyland-inc/rainrelay/pkg/extract"
)

func TestRender_FullAlert(t *testing.T) {
	r := NewRenderer()

	alert := extract.Alert{
		Amount:      "$100 per user",
		Currency:    "USDT",
		Users:       []string{"Alice", "Bob"},
		Attribution: "By: admin",
	}
	ctx := classify.Context{Country: "Nigeria", Flag: "🇳🇬", Audience: "Nigeria Users"}

	got := r.Render(alert, ctx, "₹9,000.00 ($100.00) USDT")

	want := "🌧 RAIN ALERT — NIGERIA 🇳🇬\n\n" +
		"💵 Amount per User: ₹9,000.00 ($100.00) USDT\n" +
		"👥 Total Users: 2\n\n" +
		"👤 Users:\n   • <b>Alice</b>\n   • <b>Bob</b>\n\n" +
		"🎯 By: admin"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestRender_StructuralOrder(t *testing.T) {
	r := NewRenderer()

	alert := extract.Alert{
		Amount:      "$5",
		Users:       []string{"x"},
		Attribution: "By: bot",
	}
	got := r.Render(alert, classify.Context{Country: "India", Flag: "🇮🇳"}, "₹455.00 ($5.00)")

	header := strings.Index(got, "RAIN ALERT — INDIA")
	amount := strings.Index(got, "Amount per User")
	total := strings.Index(got, "Total Users")
	users := strings.Index(got, "👤 Users:")
	by := strings.Index(got, "🎯 By: bot")

	if header < 0 || amount < 0 || total < 0 || users < 0 || by < 0 {
		t.Fatalf("missing section in:\n%s", got)
	}
	if !(header < amount && amount < total && total < users && users < by) {
		t.Errorf("sections out of order in:\n%s", got)
	}
}

func TestRender_NoUsersOmitsTotalLine(t *testing.T) {
	r := NewRenderer()

	alert := extract.Alert{Amount: "Not specified"}
	got := r.Render(alert, classify.Context{Country: "Nigeria", Flag: "🇳🇬"}, "Not specified")

	if strings.Contains(got, "Total Users") {
		t.Errorf("total users line should be omitted:\n%s", got)
	}
	if strings.Contains(got, "👤 Users:") {
		t.Errorf("users block should be omitted:\n%s", got)
	}
}
