package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/payment-orchestration/internal/core/events"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("Publish", func() {
		It("should deliver to every subscriber of the event type", func() {
			var mu sync.Mutex
			var seen []string
			done := make(chan struct{}, 2)

			handler := func(name string) events.Handler {
				return func(_ context.Context, e events.Event) error {
					mu.Lock()
					seen = append(seen, name)
					mu.Unlock()
					done <- struct{}{}
					return nil
				}
			}
			bus.Subscribe(events.EventTypeTransactionCaptured, handler("first"))
			bus.Subscribe(events.EventTypeTransactionCaptured, handler("second"))

			bus.Publish(context.Background(),
				events.NewTransactionEvent(events.EventTypeTransactionCaptured, "tx_1", "cust_1", 1999, "USD", "captured"))

			Eventually(done).Should(Receive())
			Eventually(done).Should(Receive())
			mu.Lock()
			defer mu.Unlock()
			Expect(seen).To(ConsistOf("first", "second"))
		})

		It("should deliver even when the caller's context is already canceled", func() {
			ctxErr := make(chan error, 1)
			bus.Subscribe(events.EventTypeTransactionCaptured, func(ctx context.Context, _ events.Event) error {
				ctxErr <- ctx.Err()
				return nil
			})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			bus.Publish(ctx,
				events.NewTransactionEvent(events.EventTypeTransactionCaptured, "tx_1", "cust_1", 1999, "USD", "captured"))

			Eventually(ctxErr).Should(Receive(BeNil()))
		})

		It("should not deliver to subscribers of other event types", func() {
			called := make(chan struct{}, 1)
			bus.Subscribe(events.EventTypeTransactionRefunded, func(_ context.Context, _ events.Event) error {
				called <- struct{}{}
				return nil
			})

			bus.Publish(context.Background(),
				events.NewTransactionEvent(events.EventTypeTransactionCaptured, "tx_1", "cust_1", 1999, "USD", "captured"))

			Consistently(called).ShouldNot(Receive())
		})
	})

	Describe("PublishSync", func() {
		It("should run handlers inline and stop on the first failure", func() {
			var order []string
			bus.Subscribe(events.EventTypeTransactionCanceled, func(_ context.Context, _ events.Event) error {
				order = append(order, "first")
				return errors.New("handler broke")
			})
			bus.Subscribe(events.EventTypeTransactionCanceled, func(_ context.Context, _ events.Event) error {
				order = append(order, "second")
				return nil
			})

			err := bus.PublishSync(context.Background(),
				events.NewTransactionEvent(events.EventTypeTransactionCanceled, "tx_1", "cust_1", 1999, "USD", "canceled"))

			Expect(err).To(HaveOccurred())
			Expect(order).To(Equal([]string{"first"}))
		})
	})

	Describe("TransactionEvent", func() {
		It("should carry the transaction fields and a unique id", func() {
			a := events.NewTransactionEvent(events.EventTypeTransactionAuthorized, "tx_1", "cust_1", 1999, "USD", "authorized")
			b := events.NewTransactionEvent(events.EventTypeTransactionAuthorized, "tx_1", "cust_1", 1999, "USD", "authorized")

			Expect(a.EventType()).To(Equal(events.EventTypeTransactionAuthorized))
			Expect(a.TransactionID).To(Equal("tx_1"))
			Expect(a.Amount).To(Equal(int64(1999)))
			Expect(a.EventID()).NotTo(Equal(b.EventID()))
		})
	})
})
