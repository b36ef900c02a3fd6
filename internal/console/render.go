package console

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"recallctl/internal/domain"
	"recallctl/internal/pnl"
	"recallctl/internal/storage/orderlog"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	totalStyle = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	gainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

func signed(v decimal.Decimal) string {
	s := v.Round(2).String()
	if v.IsNegative() {
		return lossStyle.Render(s)
	}
	return gainStyle.Render(s)
}

func balanceTable(balances []domain.Balance) string {
	rows := make([][]string, 0, len(balances))
	for i := range balances {
		b := &balances[i]
		rows = append(rows, []string{
			b.Symbol,
			b.Amount.Round(6).String(),
			b.ValueUsd.Round(2).String(),
			b.Venue,
		})
	}
	return renderTable([]string{"Token", "Amount", "USD Value", "Chain"}, rows)
}

func pnlTable(report pnl.Report) string {
	rows := make([][]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		rows = append(rows, []string{
			r.Symbol,
			r.Venue,
			r.Quantity.Round(6).String(),
			r.AverageCost.Round(4).String(),
			r.ValueUsd.Round(2).String(),
			signed(r.Unrealized),
		})
	}
	return renderTable([]string{"Token", "Chain", "Amount", "Avg Buy $", "Cur Val $", "Unreal PNL $"}, rows)
}

func historyTable(trades []domain.TradeRecord) string {
	rows := make([][]string, 0, len(trades))
	for i := range trades {
		t := &trades[i]
		ts := t.Timestamp
		if len(ts) > 19 {
			ts = ts[:19]
		}
		reason := t.Reason
		if reason == "" {
			reason = "-"
		}
		rows = append(rows, []string{
			t.FromSymbol,
			t.ToSymbol,
			t.FromAmount.Round(6).String(),
			t.ToAmount.Round(6).String(),
			reason,
			ts,
		})
	}
	return renderTable([]string{"From", "To", "FromAmt", "ToAmt", "Reason", "Time"}, rows)
}

func orderResultTable(res domain.OrderResult) string {
	status := gainStyle.Render("Success")
	if !res.Success {
		status = lossStyle.Render("Fail")
	}
	rows := [][]string{
		{"From", res.FromSymbol, res.FromAmount.Round(6).String()},
		{"To", res.ToSymbol, res.ToAmount.Round(6).String()},
		{"Price", "-", res.Price.Round(6).String()},
		{"USD Value", "-", res.ValueUsd.Round(2).String()},
		{"Reason", "-", res.Reason},
		{"Status", "-", status},
		{"Time", "-", res.Timestamp},
	}
	return renderTable([]string{"Field", "Token", "Value"}, rows)
}

func recentOrdersTable(entries []orderlog.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "fail"
		}
		rows = append(rows, []string{
			e.SubmittedAt.Format("2006-01-02 15:04:05"),
			e.FromToken,
			e.ToToken,
			e.Amount.Round(6).String(),
			e.Reason,
			status,
		})
	}
	return renderTable([]string{"Submitted", "From", "To", "Amount", "Reason", "Status"}, rows)
}
