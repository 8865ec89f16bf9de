package notify_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/localbite-davis/localbite/internal/adapters/notify"
	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/stretchr/testify/assert"
)

func makeRow(orderID int64, phase domain.DispatchPhase, bids int, leading float64) notify.AuctionRow {
	row := notify.AuctionRow{
		OrderID:         orderID,
		RestaurantID:    9,
		Status:          domain.DispatchWaitingForBids,
		Phase:           phase,
		PlacedBids:      bids,
		TimeLeftSeconds: 45,
		Note:            "student pool timer active",
	}
	if leading > 0 {
		row.HasLeading = true
		row.LeadingAmount = leading
	}
	return row
}

func TestPrintAuctions_Empty(t *testing.T) {
	var buf bytes.Buffer
	console := notify.NewConsoleWriter(&buf, false)

	console.PrintAuctions(nil)
	assert.Contains(t, buf.String(), "no active auctions")
}

func TestPrintAuctions_Compact(t *testing.T) {
	var buf bytes.Buffer
	console := notify.NewConsoleWriter(&buf, false)

	console.PrintAuctions([]notify.AuctionRow{
		makeRow(1, domain.DispatchPhaseStudentPool, 2, 10.50),
		makeRow(2, domain.DispatchPhaseAllAgents, 0, 0),
	})

	out := buf.String()
	assert.Contains(t, out, "2 auctions")
	assert.Contains(t, out, "students:1")
	assert.Contains(t, out, "waiting:2")
	assert.Contains(t, out, "#1 student_pool/waiting_for_bids bids:2 lead:$10.50")
	assert.Contains(t, out, "lead:- 45s")
	assert.Equal(t, 1, strings.Count(out, "\n"), "compact mode is one line")
}

func TestPrintAuctions_Table(t *testing.T) {
	var buf bytes.Buffer
	console := notify.NewConsoleWriter(&buf, true)

	console.PrintAuctions([]notify.AuctionRow{
		makeRow(1, domain.DispatchPhaseStudentPool, 2, 10.50),
	})

	out := buf.String()
	assert.Contains(t, out, "1 active auctions")
	assert.Contains(t, out, "$10.50")
	assert.Contains(t, out, "student pool timer active")
	for _, header := range []string{"ORDER", "PHASE", "STATUS", "BIDS", "LEADING"} {
		assert.Contains(t, strings.ToUpper(out), header)
	}
}
