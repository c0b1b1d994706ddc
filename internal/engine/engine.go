package engine

import (
	"log"
	"math"
	"time"

	"github.com/lazypower/entropy/internal/config"
	"github.com/lazypower/entropy/internal/ledger"
)

// Rules are the game rules the engine applies. Costs are nominal units.
type Rules struct {
	MaxEntropy  int
	CostCreate  float64
	CostRefresh float64
	Tolerance   float64
	Decimals    int
}

// RulesFrom converts the config section into engine rules.
func RulesFrom(cfg config.RulesConfig) Rules {
	return Rules{
		MaxEntropy:  cfg.MaxEntropy,
		CostCreate:  cfg.CostCreate,
		CostRefresh: cfg.CostRefresh,
		Tolerance:   cfg.Tolerance,
		Decimals:    cfg.Decimals,
	}
}

// Action is what a transaction asks for, decided by its paid amount.
type Action int

const (
	ActionIgnore Action = iota
	ActionCreate
	ActionRefresh
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionRefresh:
		return "refresh"
	default:
		return "ignore"
	}
}

// Classify maps a nominal amount onto an action. An amount must fall
// strictly within Tolerance of a cost to match it.
func (r Rules) Classify(amount float64) Action {
	switch {
	case math.Abs(amount-r.CostCreate) < r.Tolerance:
		return ActionCreate
	case math.Abs(amount-r.CostRefresh) < r.Tolerance:
		return ActionRefresh
	default:
		return ActionIgnore
	}
}

// Engine runs the decay and transaction passes over an item collection.
type Engine struct {
	Rules   Rules
	Decoder ledger.Decoder
	Now     func() time.Time
	logger  *log.Logger
}

// New creates an Engine. A nil decoder defaults to ledger.HexDecoder and a
// nil logger to log.Default().
func New(rules Rules, decoder ledger.Decoder, logger *log.Logger) *Engine {
	if decoder == nil {
		decoder = ledger.HexDecoder{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		Rules:   rules,
		Decoder: decoder,
		Now:     time.Now,
		logger:  logger,
	}
}
