package ladder

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joripage/pricebook/pkg/orderbook"
)

const (
	emptyBook = "Orderbook empty"
	separator = "---------------------"
)

// Book is the read side of an order book needed to draw the ladder.
type Book interface {
	IsEmpty() bool
	Levels(side orderbook.Side) []orderbook.Level
	TotalAsks() orderbook.Depth
	TotalBids() orderbook.Depth
}

// Render draws asks worst to best, a separator, then bids best to worst. Each
// row carries price, size and the cumulative total at or better than price.
func Render(b Book) string {
	var sb strings.Builder
	_ = Write(&sb, b)
	return sb.String()
}

func Write(w io.Writer, b Book) error {
	return WriteFunc(w, b, FormatTicks)
}

// PriceFormat renders a price tick in the rows of the ladder.
type PriceFormat func(orderbook.Price) string

// FormatTicks prints the raw tick.
func FormatTicks(p orderbook.Price) string {
	return strconv.FormatUint(p, 10)
}

// WriteFunc is Write with prices printed by format.
func WriteFunc(w io.Writer, b Book, format PriceFormat) error {
	if format == nil {
		format = FormatTicks
	}
	if b.IsEmpty() {
		_, err := io.WriteString(w, emptyBook)
		return err
	}

	ew := &errWriter{w: w}
	ew.printf("\tASK\n\n")
	ew.printf("Price\tSize\tTotal\n")

	askTotals := b.TotalAsks()
	writeRows(ew, b.Levels(orderbook.Ask), askTotals, format)
	ew.printf("%s\n", separator)

	bidTotals := b.TotalBids()
	writeRows(ew, b.Levels(orderbook.Bid), bidTotals, format)
	ew.printf("\n\tBID\n")

	return ew.err
}

// writeRows prints levels in descending price order.
func writeRows(ew *errWriter, levels []orderbook.Level, totals orderbook.Depth, format PriceFormat) {
	for i := len(levels) - 1; i >= 0; i-- {
		lvl := levels[i]
		total, _ := totals.Get(lvl.Price)
		ew.printf("%s\t%d\t%d\n", format(lvl.Price), lvl.Size, total)
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
