package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/queue"
	worker "github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/worker"
	logging "github.com/Ad0t/PMIS-Allocation/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

// recordingProcessor remembers every job it saw.
type recordingProcessor struct {
	mu    sync.Mutex
	seen  []string
	fail  map[string]error
	delay time.Duration
}

func (p *recordingProcessor) Process(ctx context.Context, j worker.Job) error {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, j.InternshipID)
	return p.fail[j.InternshipID]
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		proc := &recordingProcessor{fail: map[string]error{"2": errors.New("remote down")}}
		w := worker.NewInMemoryWorker(q, proc, worker.WithName("test"))
		go w.Run(ctx)

		convey.Convey("When jobs are enqueued", func() {
			for _, id := range []string{"1", "2", "3"} {
				q.Enqueue(ctx, queue.Job{InternshipID: id})
			}

			convey.Convey("Then every job is processed and failures are counted", func() {
				convey.So(waitFor(func() bool { return w.Processed()+w.Failed() == 3 }), convey.ShouldBeTrue)
				convey.So(w.Processed(), convey.ShouldEqual, 2)
				convey.So(w.Failed(), convey.ShouldEqual, 1)
				convey.So(proc.count(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerShutdownTimeout(t *testing.T) {
	convey.Convey("Given a worker stuck on a slow job", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue()
		proc := &recordingProcessor{delay: 200 * time.Millisecond}
		w := worker.NewInMemoryWorker(q, proc)
		go w.Run(ctx)
		q.Enqueue(ctx, queue.Job{InternshipID: "slow"})
		time.Sleep(20 * time.Millisecond)

		convey.Convey("When shutdown has a short deadline", func() {
			sctx, scancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer scancel()
			err := w.Shutdown(sctx)

			convey.Convey("Then it reports the timeout", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(50))
		proc := &recordingProcessor{}
		pool := worker.NewPool(4, q, proc)
		convey.So(pool.Size(), convey.ShouldEqual, 4)
		pool.Start(ctx)

		convey.Convey("When many jobs are queued and the pool shuts down", func() {
			for i := 0; i < 20; i++ {
				q.Enqueue(ctx, queue.Job{InternshipID: "x"})
			}
			convey.So(waitFor(func() bool { return pool.Processed() == 20 }), convey.ShouldBeTrue)
			err := pool.Shutdown(context.Background())

			convey.Convey("Then all jobs ran and the queue is closed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(proc.count(), convey.ShouldEqual, 20)
				convey.So(pool.Failed(), convey.ShouldEqual, 0)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("A non-positive worker count falls back to the CPU count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), worker.ProcessorFunc(func(context.Context, worker.Job) error { return nil }))
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
