package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/localbite-davis/localbite/internal/ports"
	"github.com/olekukonko/tablewriter"
)

// Console imprime el estado de las subastas activas por stdout. Es la vista
// de operaciones: una línea compacta por defecto, tabla completa con -table.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// AuctionRow es el resumen de una subasta en curso.
type AuctionRow struct {
	OrderID         int64
	RestaurantID    int64
	Status          domain.DispatchStatus
	Phase           domain.DispatchPhase
	PlacedBids      int
	LeadingAmount   float64
	HasLeading      bool
	TimeLeftSeconds int
	Note            string
}

// PrintAuctions imprime el snapshot en el modo configurado.
func (c *Console) PrintAuctions(rows []AuctionRow) {
	now := time.Now().Format("15:04:05")
	if len(rows) == 0 {
		fmt.Fprintf(c.out, "[%s] no active auctions\n", now)
		return
	}

	if c.table {
		c.printTable(now, rows)
	} else {
		c.printCompact(now, rows)
	}
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(now string, rows []AuctionRow) {
	students, waiting := 0, 0
	for _, r := range rows {
		if r.Phase == domain.DispatchPhaseStudentPool {
			students++
		}
		if r.Status == domain.DispatchWaitingForBids {
			waiting++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d auctions → students:%d waiting:%d", now, len(rows), students, waiting)

	shown := 0
	for _, r := range rows {
		if shown >= 4 {
			break
		}
		leading := "-"
		if r.HasLeading {
			leading = fmt.Sprintf("$%.2f", r.LeadingAmount)
		}
		fmt.Fprintf(&sb, " | #%d %s/%s bids:%d lead:%s %ds",
			r.OrderID, r.Phase, r.Status, r.PlacedBids, leading, r.TimeLeftSeconds)
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printTable imprime la tabla completa de subastas.
func (c *Console) printTable(now string, rows []AuctionRow) {
	fmt.Fprintf(c.out, "\n[%s] %d active auctions\n", now, len(rows))

	table := tablewriter.NewWriter(c.out)
	table.Header("Order", "Restaurant", "Phase", "Status", "Bids", "Leading", "Time left", "Note")

	for _, r := range rows {
		leading := "-"
		if r.HasLeading {
			leading = fmt.Sprintf("$%.2f", r.LeadingAmount)
		}
		table.Append(
			fmt.Sprintf("%d", r.OrderID),
			fmt.Sprintf("%d", r.RestaurantID),
			string(r.Phase),
			string(r.Status),
			fmt.Sprintf("%d", r.PlacedBids),
			leading,
			fmt.Sprintf("%ds", r.TimeLeftSeconds),
			truncate(r.Note, 40),
		)
	}

	table.Render()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// Reporter recorre los stores cada intervalo y pasa el snapshot a la consola.
type Reporter struct {
	console  *Console
	store    ports.OrderStore
	dispatch ports.DispatchStore
	interval time.Duration
	limit    int
}

// NewReporter crea un reporter con el intervalo dado.
func NewReporter(console *Console, store ports.OrderStore, dispatch ports.DispatchStore, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Reporter{console: console, store: store, dispatch: dispatch, interval: interval, limit: 50}
}

// Run imprime snapshots hasta que el contexto se cancele.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rows, err := r.snapshot(ctx)
			if err != nil {
				fmt.Fprintf(r.console.out, "reporter: snapshot failed: %v\n", err)
				continue
			}
			r.console.PrintAuctions(rows)
		}
	}
}

// snapshot construye las filas a partir de los pedidos abiertos con subasta viva.
func (r *Reporter) snapshot(ctx context.Context) ([]AuctionRow, error) {
	orders, err := r.store.ListOpenOrders(ctx, r.limit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var rows []AuctionRow
	for _, order := range orders {
		state, found, err := r.dispatch.GetState(ctx, order.OrderID)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		switch state.Status {
		case domain.DispatchStarting, domain.DispatchBroadcasted,
			domain.DispatchWaitingForBids, domain.DispatchEscalating,
			domain.DispatchNeedsFeeIncrease:
		default:
			continue
		}

		row := AuctionRow{
			OrderID:         order.OrderID,
			RestaurantID:    order.RestaurantID,
			Status:          state.Status,
			Phase:           state.Phase,
			TimeLeftSeconds: state.SecondsRemaining(now),
			Note:            state.Note,
		}

		bids, err := r.store.ListBidsByOrder(ctx, order.OrderID)
		if err != nil {
			return nil, err
		}
		row.PlacedBids = len(domain.PlacedBids(bids))
		if leading := domain.BestPlacedBid(bids); leading != nil {
			row.HasLeading = true
			row.LeadingAmount = domain.Round2(leading.BidAmount)
		}

		rows = append(rows, row)
	}
	return rows, nil
}
