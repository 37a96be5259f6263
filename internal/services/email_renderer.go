package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/shopspring/decimal"
)

const emailShell = `
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: %s; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">%s</h2>
				</div>
				<div style="padding: 20px;">
					%s
				</div>
			</div>
		</body>
		</html>
	`

// RenderErrorSection renders the skipped-rows section HTML.
func RenderErrorSection(errors []string) string {
	if len(errors) == 0 {
		return ""
	}

	var items strings.Builder
	for _, e := range errors {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(e))
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: #d13438; margin-top: 0; font-size: 18px;">Some transactions were skipped</h3>
			<ul style="margin-bottom: 0; padding-left: 20px;">
				%s
			</ul>
		</div>
	`, items.String())
}

// RenderErrorBody renders the full HTML body for an upload error email.
func RenderErrorBody(errors []string) string {
	content := "<p>The uploaded CSV could not be fully processed:</p>" + RenderErrorSection(errors)
	return fmt.Sprintf(emailShell, "#d13438", "Upload Issues", content)
}

// RenderDuplicateReport renders one table per cluster holding unresolved flags.
func RenderDuplicateReport(clusters []models.DuplicateCluster) string {
	var b strings.Builder
	total := decimal.Zero

	for _, c := range clusters {
		if len(c.Suspicious) == 0 {
			continue
		}
		total = total.Add(c.UnresolvedTotal)

		fmt.Fprintf(&b, `<h3 style="margin-bottom: 4px;">%s</h3>`, html.EscapeString(c.NormalizedDescription))
		fmt.Fprintf(&b, `<p style="margin-top: 0; color: #666;">%s &middot; usually $%s every %.0f days</p>`,
			html.EscapeString(string(c.Category)), c.MedianAmount.StringFixed(2), c.MedianIntervalDays)
		b.WriteString(`<table style="width: 100%; border-collapse: collapse; margin-bottom: 16px;">`)
		for _, f := range c.Suspicious {
			fmt.Fprintf(&b, `<tr><td style="padding: 4px 0;">%s</td><td style="text-align: right;">$%s</td><td style="padding-left: 12px;">%s</td></tr>`,
				f.Date, f.Amount.Abs().StringFixed(2), html.EscapeString(f.Reason))
		}
		b.WriteString(`</table>`)
	}

	if b.Len() == 0 {
		return fmt.Sprintf(emailShell, "#107c10", "No Suspicious Charges", "<p>Every recurring charge looks normal.</p>")
	}

	content := fmt.Sprintf(`<p>Unresolved total: <strong>$%s</strong></p>`, total.StringFixed(2)) + b.String()
	return fmt.Sprintf(emailShell, "#ca5010", "Suspicious Charges", content)
}
