package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lazypower/entropy/internal/item"
	"github.com/lazypower/entropy/internal/ledger"
)

const tracerName = "github.com/lazypower/entropy/internal/engine"

// Store is the persistence the cycle needs.
type Store interface {
	Load(ctx context.Context) (*item.Collection, error)
	Save(ctx context.Context, c *item.Collection) error
}

// Cycle wires the engine to its collaborators for one load, decay, fetch,
// apply, save round. Callers must not run two cycles against the same store
// at once.
type Cycle struct {
	Engine  *Engine
	Store   Store
	Source  ledger.Source
	Address string
	Window  int
	DryRun  bool // skip Save

	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer
}

// Report describes what one cycle did.
type Report struct {
	Decay    DecayReport
	Apply    ApplyReport
	Fetched  int
	FetchErr error // absorbed; the cycle still completes
	Total    int
	Alive    int
	Saved    bool
}

// Run executes one cycle. A failed fetch counts as zero transactions so the
// decay results are still persisted. Only store errors are returned.
func (c *Cycle) Run(ctx context.Context) (Report, error) {
	tracer := c.tracer()
	ctx, span := tracer.Start(ctx, "cycle")
	defer span.End()

	var rep Report

	coll, err := c.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return rep, err
	}

	_, decaySpan := tracer.Start(ctx, "decay")
	rep.Decay = c.Engine.Decay(coll)
	decaySpan.SetAttributes(
		attribute.Int("entropy.aged", rep.Decay.Aged),
		attribute.Int("entropy.died", rep.Decay.Died),
	)
	decaySpan.End()

	txs := c.fetch(ctx, &rep)

	_, applySpan := tracer.Start(ctx, "apply")
	rep.Apply = c.Engine.Apply(coll, txs)
	applySpan.SetAttributes(
		attribute.Int("entropy.created", rep.Apply.Created),
		attribute.Int("entropy.refreshed", rep.Apply.Refreshed),
		attribute.Int("entropy.mercy_healed", rep.Apply.MercyHealed),
		attribute.Int("entropy.ignored", rep.Apply.Ignored),
		attribute.Int("entropy.duplicates", rep.Apply.Duplicates),
	)
	applySpan.End()

	rep.Total = coll.Len()
	rep.Alive = len(coll.Alive())

	if c.DryRun {
		c.Engine.logger.Printf("dry run: not saving %d items", rep.Total)
		return rep, nil
	}

	saveCtx, saveSpan := tracer.Start(ctx, "save")
	defer saveSpan.End()
	if err := c.Store.Save(saveCtx, coll); err != nil {
		err = fmt.Errorf("save items: %w", err)
		saveSpan.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return rep, err
	}
	rep.Saved = true
	return rep, nil
}

func (c *Cycle) tracer() trace.Tracer {
	if c.Tracer != nil {
		return c.Tracer
	}
	return otel.Tracer(tracerName)
}

func (c *Cycle) load(ctx context.Context) (*item.Collection, error) {
	ctx, span := c.tracer().Start(ctx, "load")
	defer span.End()

	coll, err := c.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	span.SetAttributes(attribute.Int("entropy.items", coll.Len()))
	return coll, nil
}

func (c *Cycle) fetch(ctx context.Context, rep *Report) []ledger.Transaction {
	if c.Source == nil {
		return nil
	}
	ctx, span := c.tracer().Start(ctx, "fetch")
	defer span.End()

	c.Engine.logger.Printf("fetching transactions for %s", c.Address)
	txs, err := c.Source.Fetch(ctx, c.Address, c.Window)
	if err != nil {
		rep.FetchErr = err
		span.RecordError(err)
		c.Engine.logger.Printf("fetch failed, continuing with no transactions: %v", err)
		return nil
	}
	rep.Fetched = len(txs)
	span.SetAttributes(attribute.Int("entropy.fetched", len(txs)))
	c.Engine.logger.Printf("found %d transactions", len(txs))
	return txs
}
