package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

var _ port.CartEventsEmitter = (*CartEventsEmitter)(nil)

// A cartEventCodec used for serde [schema.CartEventV1]
type cartEventCodec struct {
	serde Serde
}

func newCartEventCodec(s Serde) cartEventCodec {
	return cartEventCodec{s}
}

func (c cartEventCodec) Encode(v any) ([]byte, error) {
	const op = "cartEventCodec.Encode"
	if _, ok := v.(schema.CartEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c cartEventCodec) Decode(data []byte) (any, error) {
	const op = "cartEventCodec.Decode"
	var s schema.CartEventV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A CartEventsEmitter emits cart mutations to the cart activity stream
// keyed by the cart owner.
type CartEventsEmitter struct {
	ge *goka.Emitter
}

func NewCartEventsEmitter(
	seedBrokers []string,
	stream string,
	serde Serde,
	sec Security,
	opts ...goka.EmitterOption,
) (*CartEventsEmitter, error) {
	const op = "NewCartEventsEmitter"

	opts = append([]goka.EmitterOption{
		goka.WithEmitterProducerBuilder(
			goka.ProducerBuilderWithConfig(sec.saramaConfig()),
		),
	}, opts...)

	ge, err := goka.NewEmitter(
		seedBrokers, goka.Stream(stream), newCartEventCodec(serde), opts...,
	)
	if err != nil {
		return nil, opErr(err, op)
	}
	return &CartEventsEmitter{ge}, nil
}

// EmitCartEvent waits for the broker acknowledgement or ctx cancellation.
func (e *CartEventsEmitter) EmitCartEvent(
	ctx context.Context, v domain.CartEvent,
) error {
	const op = "CartEventsEmitter.EmitCartEvent"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	prom, err := e.ge.Emit(v.Owner, cartEventToSchemaV1(v))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	done := make(chan error, 1)
	prom.Then(func(err error) {
		done <- err
	})

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
}

func (e *CartEventsEmitter) Close() {
	const op = "CartEventsEmitter.Close"
	log := slog.With("op", op)

	log.Info("closing emitter...")
	if err := e.ge.Finish(); err != nil {
		log.Error("failed to finish gracefully", "err", err)
		return
	}
	log.Info("emitter is closed")
}
