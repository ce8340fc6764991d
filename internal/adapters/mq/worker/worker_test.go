package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/jobdb/internal/adapters/mq/queue"
	worker "github.com/okian/jobdb/internal/adapters/mq/worker"
	model "github.com/okian/jobdb/internal/domain/model"
	logging "github.com/okian/jobdb/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	eventChan chan queue.Event
}

func newMockQueue() *mockQueue {
	return &mockQueue{eventChan: make(chan queue.Event, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Event {
	return mq.eventChan
}

type recordingHandler struct {
	mu     sync.Mutex
	events []model.Interaction
	fail   map[string]error
}

func (h *recordingHandler) Handle(_ context.Context, e model.Interaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.fail[e.ID]; err != nil {
		return err
	}
	h.events = append(h.events, e)
	return nil
}

func (h *recordingHandler) ids() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.ID
	}
	return out
}

func TestInMemoryWorker(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a running InMemoryWorker", t, func() {
		q := newMockQueue()
		h := &recordingHandler{fail: map[string]error{"bad": errors.New("backend down")}}
		w := worker.NewInMemoryWorker(q, h, worker.WithName("test-worker"), worker.WithLogger(logging.Nop()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When events including a failing one are queued", func() {
			q.eventChan <- model.Interaction{ID: "a", Kind: model.EventSortRequest}
			q.eventChan <- model.Interaction{ID: "bad", Kind: model.EventSortRequest}
			q.eventChan <- model.Interaction{ID: "b", Kind: model.EventFilterToggle}
			close(q.eventChan)

			select {
			case <-w.Done():
			case <-time.After(2 * time.Second):
				t.Fatal("worker did not stop")
			}

			convey.Convey("Then the failure is dropped and the rest are written in order", func() {
				convey.So(h.ids(), convey.ShouldResemble, []string{"a", "b"})
			})
		})

		convey.Convey("When the context is canceled", func() {
			cancel()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-w.Done():
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(2 * time.Second):
					t.Fatal("worker did not stop")
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool with several shards", t, func() {
		h := &recordingHandler{}
		p := worker.NewPool(4, 100, h)
		ctx := context.Background()
		p.Start(ctx)

		convey.Convey("Then an actor always maps to the same shard", func() {
			convey.So(p.Shard("u1"), convey.ShouldEqual, p.Shard("u1"))
			convey.So(p.Shard("u1"), convey.ShouldBeBetweenOrEqual, 0, 3)
		})

		convey.Convey("When one actor submits many events", func() {
			for i := 0; i < 50; i++ {
				ok := p.Submit(ctx, model.Interaction{ID: fmt.Sprintf("%02d", i), ActorID: "u1", Kind: model.EventSortRequest})
				convey.So(ok, convey.ShouldBeTrue)
			}
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then they are all written in submission order", func() {
				got := h.ids()
				convey.So(len(got), convey.ShouldEqual, 50)
				for i, id := range got {
					convey.So(id, convey.ShouldEqual, fmt.Sprintf("%02d", i))
				}
			})

			convey.Convey("Then submissions after shutdown are rejected", func() {
				convey.So(p.Submit(ctx, model.Interaction{ActorID: "u1"}), convey.ShouldBeFalse)
				convey.So(p.Len(ctx), convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a handler func", t, func() {
		called := false
		h := worker.HandlerFunc(func(context.Context, model.Interaction) error {
			called = true
			return nil
		})
		convey.So(h.Handle(context.Background(), model.Interaction{}), convey.ShouldBeNil)
		convey.So(called, convey.ShouldBeTrue)
	})
}
