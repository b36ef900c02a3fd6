// Package console implements the interactive operator console: an
// auto-refreshable dashboard over the agent's balances and unrealized PNL,
// with menu actions for history, single swaps, and amortized batch orders.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"recallctl/config"
	"recallctl/internal/amortizer"
	"recallctl/internal/chains"
	"recallctl/internal/clients"
	"recallctl/internal/domain"
	"recallctl/internal/ledger"
	"recallctl/internal/metrics"
	"recallctl/internal/pnl"
	"recallctl/internal/storage/orderlog"
)

const (
	menuRefresh      = "Refresh dashboard"
	menuHistory      = "Trade history"
	menuBuy          = "Buy (single)"
	menuSell         = "Sell (single)"
	menuBatchBuy     = "Batch buy"
	menuBatchSell    = "Batch sell"
	menuTokenToToken = "Token to token (single)"
	menuRecentOrders = "Recent orders"
	menuQuit         = "Quit"

	recentOrderCount = 10
)

// Console drives the operator session. All I/O failures degrade to warnings;
// the loop itself never dies on an API error.
type Console struct {
	cfg     config.Config
	client  *clients.RecallClient
	venues  *chains.Registry
	ledger  *ledger.Ledger
	rec     *pnl.Reconciler
	journal *orderlog.Store
	metrics *metrics.Metrics
	log     *zap.Logger
	out     io.Writer
}

// New wires the console from its collaborators.
func New(cfg config.Config, client *clients.RecallClient, venues *chains.Registry,
	journal *orderlog.Store, m *metrics.Metrics, log *zap.Logger) *Console {
	stables := domain.NewStableSet(cfg.Stables)
	return &Console{
		cfg:     cfg,
		client:  client,
		venues:  venues,
		ledger:  ledger.New(stables),
		rec:     pnl.New(stables),
		journal: journal,
		metrics: m,
		log:     log,
		out:     os.Stdout,
	}
}

// Run is the interactive menu loop. It returns on quit, user abort, or
// context cancellation.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.renderDashboard(ctx)

		choice, err := c.menu()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		switch choice {
		case menuRefresh:
		case menuHistory:
			c.showHistory(ctx)
		case menuBuy:
			c.singleBuy(ctx)
		case menuSell:
			c.singleSell(ctx)
		case menuBatchBuy:
			c.batchTrade(ctx, true)
		case menuBatchSell:
			c.batchTrade(ctx, false)
		case menuTokenToToken:
			c.tokenToToken(ctx)
		case menuRecentOrders:
			c.showRecentOrders()
		case menuQuit:
			return nil
		}
	}
}

// Watch renders the dashboard on the refresh interval without prompting.
func (c *Console) Watch(ctx context.Context) error {
	for {
		c.renderDashboard(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RefreshInterval):
		}
	}
}

func (c *Console) menu() (string, error) {
	var choice string
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Menu").
			Options(huh.NewOptions(
				menuRefresh,
				menuHistory,
				menuBuy,
				menuSell,
				menuBatchBuy,
				menuBatchSell,
				menuTokenToToken,
				menuRecentOrders,
				menuQuit,
			)...).
			Value(&choice),
	)).Run()
	return choice, err
}

func (c *Console) renderDashboard(ctx context.Context) {
	fmt.Fprintln(c.out, titleStyle.Render("Dashboard - Agent: "+c.cfg.AgentName))

	balances, err := c.client.Balances(ctx)
	if err != nil {
		c.metrics.RefreshErrors.Inc()
		c.log.Warn("balance fetch failed", zap.Error(err))
		fmt.Fprintln(c.out, warnStyle.Render("balances unavailable: "+err.Error()))
		return
	}

	if len(balances) == 0 {
		fmt.Fprintln(c.out, "No balances.")
	} else {
		fmt.Fprintln(c.out, balanceTable(balances))

		total := decimal.Zero
		for i := range balances {
			total = total.Add(balances[i].ValueUsd)
		}
		c.metrics.PortfolioValueUsd.Set(total.InexactFloat64())
		fmt.Fprintln(c.out, totalStyle.Render("Total Portfolio Value: "+total.Round(2).String()+" USD"))
	}

	trades, err := c.client.Trades(ctx)
	if err != nil {
		c.metrics.RefreshErrors.Inc()
		c.log.Warn("trade history fetch failed", zap.Error(err))
		fmt.Fprintln(c.out, warnStyle.Render("trade history unavailable: "+err.Error()))
		return
	}

	report := c.rec.Reconcile(c.ledger.Positions(trades), balances)
	c.metrics.UnrealizedPnlUsd.Set(report.TotalUnrealized.InexactFloat64())
	c.metrics.MalformedFields.Set(float64(c.client.MalformedFields()))

	fmt.Fprintln(c.out, titleStyle.Render("Unrealized PNL"))
	if len(report.Rows) == 0 {
		fmt.Fprintln(c.out, "No non-stable positions with a tracked cost basis.")
		return
	}
	fmt.Fprintln(c.out, pnlTable(report))
	fmt.Fprintln(c.out, totalStyle.Render("Total Unrealized PNL: ")+signed(report.TotalUnrealized)+" USD")
}

func (c *Console) showHistory(ctx context.Context) {
	trades, err := c.client.Trades(ctx)
	if err != nil {
		c.warn("trade history unavailable", err)
		return
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp < trades[j].Timestamp
	})

	fmt.Fprintln(c.out, titleStyle.Render("History - Agent: "+c.cfg.AgentName))
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "No trades yet.")
		return
	}
	fmt.Fprintln(c.out, historyTable(trades))
}

func (c *Console) showRecentOrders() {
	entries, err := c.journal.Recent(recentOrderCount)
	if err != nil {
		c.warn("order journal unavailable", err)
		return
	}

	fmt.Fprintln(c.out, titleStyle.Render("Recent Orders"))
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No orders journaled yet.")
		return
	}
	fmt.Fprintln(c.out, recentOrdersTable(entries))
}

func (c *Console) singleBuy(ctx context.Context) {
	fromVenue, toVenue, err := c.pickVenues("From chain (USDC source)", "To chain (target token)")
	if err != nil {
		return
	}
	toToken, err := c.promptLine("toToken (address or symbol)", "")
	if err != nil {
		return
	}
	amount, err := c.promptDecimal("USDC amount")
	if err != nil {
		return
	}
	reason, err := c.promptLine("Reason (optional)", "BUY")
	if err != nil {
		return
	}

	usdc, err := c.venues.USDC(fromVenue)
	if err != nil {
		c.warn("cannot resolve USDC", err)
		return
	}

	c.submitAndReport(ctx, domain.OrderRequest{
		FromToken: usdc,
		ToToken:   toToken,
		FromVenue: fromVenue,
		ToVenue:   toVenue,
		Amount:    amount,
		Slippage:  c.cfg.Slippage,
		Reason:    reason,
	})
}

func (c *Console) singleSell(ctx context.Context) {
	fromVenue, toVenue, err := c.pickVenues("From chain (token source)", "To chain (USDC target)")
	if err != nil {
		return
	}
	fromToken, err := c.promptLine("fromToken (address or symbol)", "")
	if err != nil {
		return
	}
	amount, err := c.promptDecimal("Token amount")
	if err != nil {
		return
	}
	reason, err := c.promptLine("Reason (optional)", "SELL")
	if err != nil {
		return
	}

	usdc, err := c.venues.USDC(toVenue)
	if err != nil {
		c.warn("cannot resolve USDC", err)
		return
	}

	c.submitAndReport(ctx, domain.OrderRequest{
		FromToken: fromToken,
		ToToken:   usdc,
		FromVenue: fromVenue,
		ToVenue:   toVenue,
		Amount:    amount,
		Slippage:  c.cfg.Slippage,
		Reason:    reason,
	})
}

func (c *Console) tokenToToken(ctx context.Context) {
	fromVenue, toVenue, err := c.pickVenues("From chain (token source)", "To chain (token target)")
	if err != nil {
		return
	}
	fromToken, err := c.promptLine("fromToken (address or symbol)", "")
	if err != nil {
		return
	}
	toToken, err := c.promptLine("toToken (address or symbol)", "")
	if err != nil {
		return
	}
	amount, err := c.promptDecimal("Source token amount")
	if err != nil {
		return
	}
	reason, err := c.promptLine("Reason (optional)", fmt.Sprintf("T2T %s->%s", fromVenue, toVenue))
	if err != nil {
		return
	}

	// balance sanity check only warns, the venue enforces for real
	if held, err := c.client.BalanceAmount(ctx, fromVenue, fromToken); err == nil {
		if held.IsPositive() && amount.GreaterThan(held) {
			fmt.Fprintln(c.out, warnStyle.Render(
				fmt.Sprintf("balance %s %s is below requested %s", fromToken, held, amount)))
		}
	}

	c.submitAndReport(ctx, domain.OrderRequest{
		FromToken: fromToken,
		ToToken:   toToken,
		FromVenue: fromVenue,
		ToVenue:   toVenue,
		Amount:    amount,
		Slippage:  c.cfg.Slippage,
		Reason:    reason,
	})
}

func (c *Console) batchTrade(ctx context.Context, buy bool) {
	var fromTitle, toTitle, defaultReason, totalTitle string
	if buy {
		fromTitle, toTitle = "From chain (USDC source)", "To chain (target token)"
		defaultReason = "BATCH BUY"
		totalTitle = "Total USDC"
	} else {
		fromTitle, toTitle = "From chain (token source)", "To chain (USDC target)"
		defaultReason = "BATCH SELL"
		totalTitle = "Total token"
	}

	fromVenue, toVenue, err := c.pickVenues(fromTitle, toTitle)
	if err != nil {
		return
	}
	token, err := c.promptLine("Token (address or symbol)", "")
	if err != nil {
		return
	}
	total, err := c.promptDecimal(totalTitle)
	if err != nil {
		return
	}
	step, err := c.promptDecimal("Per trade")
	if err != nil {
		return
	}
	reason, err := c.promptLine("Reason (optional)", defaultReason)
	if err != nil {
		return
	}

	req := domain.OrderRequest{
		FromVenue: fromVenue,
		ToVenue:   toVenue,
		Slippage:  c.cfg.Slippage,
		Reason:    reason,
	}
	if buy {
		usdc, err := c.venues.USDC(fromVenue)
		if err != nil {
			c.warn("cannot resolve USDC", err)
			return
		}
		req.FromToken, req.ToToken = usdc, token
	} else {
		usdc, err := c.venues.USDC(toVenue)
		if err != nil {
			c.warn("cannot resolve USDC", err)
			return
		}
		req.FromToken, req.ToToken = token, usdc
	}

	a := amortizer.New(c.client, c.cfg.BatchPause, c.log)
	results, err := a.Run(ctx, req, total, step)
	if err != nil && len(results) == 0 {
		c.warn("batch not started", err)
		return
	}

	filled := 0
	for _, r := range results {
		slice := req
		slice.Amount = r.Quantity
		c.record(r.ClientOrderID, slice, r.Result, r.Err)
		if !r.Failed() {
			filled++
		}
	}
	fmt.Fprintln(c.out, titleStyle.Render("Batch Result"))
	fmt.Fprintf(c.out, "%d/%d child orders filled\n", filled, len(results))
	if err != nil {
		fmt.Fprintln(c.out, warnStyle.Render("batch interrupted: "+err.Error()))
	}
}

func (c *Console) submitAndReport(ctx context.Context, req domain.OrderRequest) {
	res, err := c.client.ExecuteTrade(ctx, req)
	c.record(uuid.NewString(), req, res, err)

	fmt.Fprintln(c.out, titleStyle.Render("Trade Result"))
	if err != nil {
		fmt.Fprintln(c.out, warnStyle.Render("trade failed: "+err.Error()))
		return
	}
	fmt.Fprintln(c.out, orderResultTable(res))
}

// record journals one submission and keeps the order counters apace.
func (c *Console) record(id string, req domain.OrderRequest, res domain.OrderResult, err error) {
	c.metrics.OrdersSubmitted.Inc()
	if err != nil || !res.Success {
		c.metrics.OrdersFailed.Inc()
	}

	entry := orderlog.Entry{
		ClientOrderID: id,
		FromToken:     req.FromToken,
		ToToken:       req.ToToken,
		FromVenue:     req.FromVenue,
		ToVenue:       req.ToVenue,
		Amount:        req.Amount,
		Reason:        req.Reason,
		Success:       err == nil && res.Success,
		SubmittedAt:   time.Now().UTC(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if jerr := c.journal.Append(entry); jerr != nil {
		c.log.Warn("order journal append failed", zap.Error(jerr))
	}
}

func (c *Console) warn(msg string, err error) {
	c.log.Warn(msg, zap.Error(err))
	fmt.Fprintln(c.out, warnStyle.Render(msg+": "+err.Error()))
}

func (c *Console) pickVenues(fromTitle, toTitle string) (string, string, error) {
	var from, to string
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(fromTitle).
			Options(huh.NewOptions(c.venues.Names()...)...).
			Value(&from),
		huh.NewSelect[string]().
			Title(toTitle).
			Options(huh.NewOptions(c.venues.Names()...)...).
			Value(&to),
	)).Run()
	return from, to, err
}

func (c *Console) promptLine(title, fallback string) (string, error) {
	var s string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).Value(&s),
	)).Run()
	if err != nil {
		return "", err
	}
	if s == "" {
		s = fallback
	}
	return s, nil
}

func (c *Console) promptDecimal(title string) (decimal.Decimal, error) {
	var s string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			Validate(func(v string) error {
				d, err := decimal.NewFromString(v)
				if err != nil {
					return errors.New("enter a number")
				}
				if !d.IsPositive() {
					return errors.New("must be positive")
				}
				return nil
			}).
			Value(&s),
	)).Run()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(s)
}
