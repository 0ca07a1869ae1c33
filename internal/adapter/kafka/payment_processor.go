package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
	"github.com/titanshop/storefront/pkg/schema"
)

var _ port.PaymentEventsProcessor = (*PaymentEventsProcessor)(nil)

// A PaymentHandler reacts to a settled charge.
type PaymentHandler interface {
	HandlePayment(ctx context.Context, ev domain.PaymentEvent) error
}

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
		return
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A paymentEventCodec used for serde [schema.PaymentEventV1]
type paymentEventCodec struct {
	serde Serde
}

func newPaymentEventCodec(s Serde) paymentEventCodec {
	return paymentEventCodec{s}
}

func (c paymentEventCodec) Encode(v any) ([]byte, error) {
	const op = "paymentEventCodec.Encode"
	if _, ok := v.(schema.PaymentEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c paymentEventCodec) Decode(data []byte) (any, error) {
	const op = "paymentEventCodec.Decode"
	var s schema.PaymentEventV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, err
}

// A PaymentEventsProcessor consumes payment confirmations from the
// provider stream and drives the pending checkouts to completion.
type PaymentEventsProcessor struct {
	opPrefix string
	proc     processor
	handler  PaymentHandler
}

func NewPaymentEventsProc(
	seedBrokers []string,
	inputStream string,
	group string,
	paymentEventSerde Serde,
	handler PaymentHandler,
) (*PaymentEventsProcessor, error) {
	const op = "NewPaymentEventsProc"

	if handler == nil {
		return nil, opErr(errors.New("handler is nil"), op)
	}

	p := PaymentEventsProcessor{
		opPrefix: "PaymentEventsProcessor",
		handler:  handler,
	}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(inputStream),
			newPaymentEventCodec(paymentEventSerde),
			p.processFn,
		),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}

	return &p, nil
}

func (p *PaymentEventsProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *PaymentEventsProcessor) Close() {
	p.proc.close()
}

func (p *PaymentEventsProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"

	event, _ := msg.(schema.PaymentEventV1)
	log := slog.With(
		"op", makeOp(p.opPrefix, op),
		"chatID", event.ChatID, "orderID", event.OrderID,
	)

	err := p.handler.HandlePayment(ctx.Context(), schemaV1ToPaymentEvent(event))
	if err != nil {
		log.Error("failed to handle payment event", "err", err)
		return
	}
	log.Info("payment event handled", "status", event.Status)
}
