package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gammazero/deque"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joripage/pricebook/pkg/ladder"
	"github.com/joripage/pricebook/pkg/logging"
	"github.com/joripage/pricebook/pkg/orderbook"
	"github.com/joripage/pricebook/pkg/tick"
)

// StepError reports the step that stopped a run.
type StepError struct {
	Index int
	Op    Op
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type queuedStep struct {
	index int
	step  Step
}

// Runner applies steps to one book. Steps wait in a FIFO queue until Drain;
// the queue outlives a single Drain so a cancelled or failed drain can be
// resumed or reset by the caller.
type Runner struct {
	book   *orderbook.OrderBook
	scale  tick.Scale
	out    io.Writer
	logger *logging.Logger

	queue deque.Deque[queuedStep]
	next  int
}

func NewRunner(book *orderbook.OrderBook, scale tick.Scale, out io.Writer, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		book:   book,
		scale:  scale,
		out:    out,
		logger: logger,
	}
}

func (r *Runner) Book() *orderbook.OrderBook {
	return r.book
}

// Pending is the number of queued steps not yet applied.
func (r *Runner) Pending() int {
	return r.queue.Len()
}

// Reset drops every queued step.
func (r *Runner) Reset() {
	r.queue.Clear()
}

// Enqueue validates steps and queues them behind any pending ones. Nothing is
// queued when one of them is invalid. Steps are numbered in arrival order
// across calls.
func (r *Runner) Enqueue(steps ...Step) error {
	for i, step := range steps {
		if err := step.Validate(); err != nil {
			return &StepError{Index: r.next + i, Op: step.Op, Err: err}
		}
	}
	for _, step := range steps {
		r.queue.PushBack(queuedStep{index: r.next, step: step})
		r.next++
	}
	return nil
}

// Drain applies queued steps in order until the queue is empty. It stops at
// the first failing step, which is dropped, and returns a *StepError. The
// book keeps the state it had before that step and later steps stay queued.
// A cancelled ctx stops the drain between steps.
func (r *Runner) Drain(ctx context.Context) error {
	for r.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		qs := r.queue.PopFront()
		if err := r.apply(qs.step); err != nil {
			r.logger.Error(ctx, "scenario step failed",
				zap.Int("step", qs.index),
				zap.String("op", string(qs.step.Op)),
				zap.Int("pending", r.queue.Len()),
				zap.Error(err),
			)
			return &StepError{Index: qs.index, Op: qs.step.Op, Err: err}
		}
		r.logger.Debug(ctx, "scenario step applied",
			zap.Int("step", qs.index),
			zap.String("op", string(qs.step.Op)),
			zap.String("side", qs.step.Side),
			zap.String("price", qs.step.Price),
			zap.Uint64("size", qs.step.Size),
		)
	}
	return nil
}

// Run queues every step of sc and drains the queue.
func (r *Runner) Run(ctx context.Context, sc *Scenario) error {
	if err := r.Enqueue(sc.Steps...); err != nil {
		return err
	}

	r.logger.Info(ctx, "scenario started",
		zap.String("scenario", sc.Name),
		zap.Int("steps", r.queue.Len()),
	)

	if err := r.Drain(ctx); err != nil {
		return err
	}

	r.logger.Info(ctx, "scenario finished",
		zap.String("scenario", sc.Name),
		zap.Int("bid_levels", r.book.Len(orderbook.Bid)),
		zap.Int("ask_levels", r.book.Len(orderbook.Ask)),
	)
	return nil
}

// Feed reads a stream of YAML documents from rd. Each document is one step or
// a list of steps; it is queued and drained before the next one is read.
func (r *Runner) Feed(ctx context.Context, rd io.Reader) error {
	dec := yaml.NewDecoder(rd)
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read steps: %w", err)
		}

		steps, err := decodeSteps(&doc)
		if err != nil {
			return err
		}
		if err := r.Enqueue(steps...); err != nil {
			return err
		}
		if err := r.Drain(ctx); err != nil {
			return err
		}
	}
}

func decodeSteps(doc *yaml.Node) ([]Step, error) {
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	if node.Kind == yaml.SequenceNode {
		var steps []Step
		if err := node.Decode(&steps); err != nil {
			return nil, fmt.Errorf("read steps: %w", err)
		}
		return steps, nil
	}

	var step Step
	if err := node.Decode(&step); err != nil {
		return nil, fmt.Errorf("read step: %w", err)
	}
	return []Step{step}, nil
}

func (r *Runner) formatPrice(p orderbook.Price) string {
	return r.scale.FromTicks(p).String()
}

func (r *Runner) apply(step Step) error {
	var price orderbook.Price
	if needsPrice[step.Op] {
		p, err := r.scale.Parse(step.Price)
		if err != nil {
			return err
		}
		price = p
	}

	switch step.Op {
	case AddBid:
		return r.book.AddBid(price, step.Size)
	case AddAsk:
		return r.book.AddAsk(price, step.Size)
	case RemoveBid:
		return r.book.RemoveBid(price, step.Size)
	case RemoveAsk:
		return r.book.RemoveAsk(price, step.Size)
	case Add:
		side, err := orderbook.ParseSide(step.Side)
		if err != nil {
			return err
		}
		return r.book.Add(side, price, step.Size)
	case Remove:
		side, err := orderbook.ParseSide(step.Side)
		if err != nil {
			return err
		}
		if side == orderbook.Bid {
			return r.book.RemoveBid(price, step.Size)
		}
		return r.book.RemoveAsk(price, step.Size)
	case Query:
		if size, ok := r.book.QueryOrders(price); ok {
			return r.printf("query %s: %d\n", r.formatPrice(price), size)
		}
		return r.printf("query %s: none\n", r.formatPrice(price))
	case BestBid:
		lvl, err := r.book.BestBid()
		if err != nil {
			return err
		}
		return r.printf("best bid: %s %d\n", r.formatPrice(lvl.Price), lvl.Size)
	case BestAsk:
		lvl, err := r.book.BestAsk()
		if err != nil {
			return err
		}
		return r.printf("best ask: %s %d\n", r.formatPrice(lvl.Price), lvl.Size)
	case TotalBids:
		return r.printDepth("bid", r.book.TotalBids())
	case TotalAsks:
		return r.printDepth("ask", r.book.TotalAsks())
	case Render:
		if err := ladder.WriteFunc(r.out, r.book, r.formatPrice); err != nil {
			return err
		}
		return r.printf("\n")
	case Summary:
		return r.printf("%s\n", ladder.SummarizeFunc(r.book, r.formatPrice))
	}
	return fmt.Errorf("%w: unknown op %q", ErrInvalidStep, step.Op)
}

func (r *Runner) printDepth(side string, depth orderbook.Depth) error {
	for _, d := range depth {
		if err := r.printf("%s total %s: %d\n", side, r.formatPrice(d.Price), d.Total); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(r.out, format, args...)
	return err
}
