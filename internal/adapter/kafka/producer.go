package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.PurchaseEventsProducer = PurchasesProducer{}

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// A PurchasesProducer used for produce confirmed purchases as
// [schema.PurchaseV1] keyed by invoice id.
type PurchasesProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewPurchasesProducer(
	opts ...ProducerOpt,
) (PurchasesProducer, error) {
	const op = "NewPurchasesProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return PurchasesProducer{}, opErr(err, op)
		}
	}

	opPrefix := "PurchasesProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return PurchasesProducer{
		encoder:  options.encoder,
		producer: p,
		opPrefix: opPrefix,
	}, nil
}

func (p PurchasesProducer) Close() {
	p.producer.close()
}

func (p PurchasesProducer) ProducePurchase(
	ctx context.Context, v domain.PurchaseEvent,
) error {
	const op = "ProducePurchase"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(v)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	return nil
}

func (p PurchasesProducer) createRecord(
	v domain.PurchaseEvent,
) (*kgo.Record, error) {
	const op = "createRecord"

	s := p.toSchema(v)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.InvoiceID), Value: b}, nil
}

func (PurchasesProducer) toSchema(v domain.PurchaseEvent) schema.PurchaseV1 {
	return purchaseToSchemaV1(v)
}
