// Package format renders the canonical outbound alert message.
package format

import (
	"fmt"
	"strings"

	"github.com/tinyland-inc/rainrelay/pkg/classify"
	"github.com/tinyland-inc/rainrelay/pkg/extract"
)

// Renderer produces the fixed-structure relay message: header with
// the resolved country, the converted amount line, a total-users line
// (only when recipients were found), the bulleted recipient list, and
// the attribution line. Output uses Telegram HTML markup for emphasis.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render assembles the outbound text. convertedAmount is the display
// string produced by the converter for alert.Amount.
func (r *Renderer) Render(alert extract.Alert, ctx classify.Context, convertedAmount string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🌧 RAIN ALERT — %s %s\n\n", strings.ToUpper(ctx.Country), ctx.Flag)
	fmt.Fprintf(&b, "💵 Amount per User: %s\n", convertedAmount)
	if alert.UserCount() > 0 {
		fmt.Fprintf(&b, "👥 Total Users: %d", alert.UserCount())
	}
	b.WriteString("\n\n")

	var blocks []string
	if len(alert.Users) > 0 {
		var users strings.Builder
		users.WriteString("👤 Users:")
		for _, name := range alert.Users {
			fmt.Fprintf(&users, "\n   • <b>%s</b>", name)
		}
		blocks = append(blocks, users.String())
	}
	if alert.Attribution != "" {
		blocks = append(blocks, "🎯 "+alert.Attribution)
	}
	b.WriteString(strings.Join(blocks, "\n\n"))

	return b.String()
}
