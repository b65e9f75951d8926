package assessment

import (
	"time"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

// Engine wires the four components over one store.
type Engine struct {
	Bank      *Bank
	Gate      *Gate
	Assembler *Assembler
	Lifecycle *Lifecycle
}

type Option func(*options)

type options struct {
	diagnosticScorer grading.DiagnosticScorer
	attemptScorer    grading.AttemptScorer
	defaultCap       int
	now              func() time.Time
	log              *zap.Logger
}

func WithDiagnosticScorer(s grading.DiagnosticScorer) Option {
	return func(o *options) { o.diagnosticScorer = s }
}
func WithAttemptScorer(s grading.AttemptScorer) Option { return func(o *options) { o.attemptScorer = s } }
func WithDefaultCap(n int) Option                      { return func(o *options) { o.defaultCap = n } }
func WithClock(now func() time.Time) Option            { return func(o *options) { o.now = now } }
func WithLogger(l *zap.Logger) Option                  { return func(o *options) { o.log = l } }

func NewEngine(store Store, opts ...Option) *Engine {
	o := &options{
		diagnosticScorer: grading.ParticipationScorer{Prefix: grading.DefaultAnswerPrefix},
		attemptScorer:    grading.NewRandomScorer(50, 95),
		defaultCap:       DefaultQuizCap,
		now:              time.Now,
		log:              zap.NewNop(),
	}
	for _, fn := range opts {
		fn(o)
	}

	bank := NewBank(store, o.log.Named("bank"))
	gate := NewGate(store, o.diagnosticScorer, o.log.Named("gate"))
	asm := NewAssembler(gate, bank, o.defaultCap)
	life := NewLifecycle(gate, asm, store, o.attemptScorer, o.log.Named("lifecycle"))
	bank.now, gate.now, life.now = o.now, o.now, o.now

	return &Engine{Bank: bank, Gate: gate, Assembler: asm, Lifecycle: life}
}
