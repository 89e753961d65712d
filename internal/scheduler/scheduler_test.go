package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/larrywright/pi-homeassistant-reporter/internal/collector"
	"github.com/larrywright/pi-homeassistant-reporter/internal/config"
	"github.com/larrywright/pi-homeassistant-reporter/internal/models"
	"github.com/larrywright/pi-homeassistant-reporter/internal/publisher"
	"github.com/larrywright/pi-homeassistant-reporter/internal/telemetry"
)

type fakeSource struct {
	body string
	err  error
}

func (f fakeSource) Fetch(ctx context.Context) (string, error) { return f.body, f.err }

type fakePublisher struct {
	mu      sync.Mutex
	calls   int
	devices []string
	err     error
	onCall  func(n int)
}

func (f *fakePublisher) Publish(ctx context.Context, snap models.Snapshot, device string) (publisher.Report, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.devices = append(f.devices, device)
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(n)
	}
	if f.err != nil {
		return publisher.Report{Device: device}, f.err
	}
	return publisher.Report{
		Device:            device,
		StateMessages:     len(snap),
		DiscoveryMessages: len(snap),
		Availability:      true,
	}, nil
}

type panickingExtractor struct{}

func (panickingExtractor) Extract(string) models.Snapshot { panic("unexpected") }

func testCollection() config.CollectionConfig {
	cfg := config.DefaultConfig().Collection
	cfg.Interval = config.Duration{Duration: 5 * time.Millisecond}
	cfg.RetryBackoff = config.Duration{Duration: time.Millisecond}
	return cfg
}

func newScheduler(src collector.Source, ex Extractor, pub Publisher) *Scheduler {
	return New(src, ex, pub, "pi", testCollection(), telemetry.New(), nil)
}

func TestRunCycle_Published(t *testing.T) {
	pub := &fakePublisher{}
	s := newScheduler(fakeSource{body: "node_load1 0.5\nnode_load5 0.25\n"}, collector.NewDefaultRegistry(testCollection(), nil), pub)

	res := s.RunCycle(context.Background())
	if res.Result != telemetry.ResultPublished {
		t.Fatalf("Result = %q, want published (err %v)", res.Result, res.Err)
	}
	if res.Metrics != 2 {
		t.Errorf("Metrics = %d, want 2", res.Metrics)
	}
	if res.Report.Messages() != 5 {
		t.Errorf("Messages = %d, want 5", res.Report.Messages())
	}
	if pub.calls != 1 || pub.devices[0] != "pi" {
		t.Errorf("publisher calls = %d devices = %v", pub.calls, pub.devices)
	}
}

func TestRunCycle_FetchFailureSkipsPublish(t *testing.T) {
	pub := &fakePublisher{}
	fetchErr := &collector.StatusError{StatusCode: 500}
	s := newScheduler(fakeSource{err: fetchErr}, collector.NewDefaultRegistry(testCollection(), nil), pub)

	res := s.RunCycle(context.Background())
	if res.Result != telemetry.ResultNoMetrics {
		t.Errorf("Result = %q, want no_metrics", res.Result)
	}
	if !errors.Is(res.Err, fetchErr) {
		t.Errorf("Err = %v, want fetch error", res.Err)
	}
	if pub.calls != 0 {
		t.Errorf("publisher invoked %d times after fetch failure", pub.calls)
	}
}

func TestRunCycle_EmptySnapshotSkipsPublish(t *testing.T) {
	pub := &fakePublisher{}
	s := newScheduler(fakeSource{body: "node_cpu_seconds_total{cpu=\"0\",mode=\"idle\"} 1\n"}, collector.NewDefaultRegistry(testCollection(), nil), pub)

	if res := s.RunCycle(context.Background()); res.Result != telemetry.ResultNoMetrics {
		t.Errorf("Result = %q, want no_metrics", res.Result)
	}
	if pub.calls != 0 {
		t.Errorf("publisher invoked %d times for empty snapshot", pub.calls)
	}
}

func TestRunCycle_PublishFailure(t *testing.T) {
	pub := &fakePublisher{err: &publisher.PublishError{Err: errors.New("refused")}}
	s := newScheduler(fakeSource{body: "node_load1 0.5\n"}, collector.NewDefaultRegistry(testCollection(), nil), pub)

	res := s.RunCycle(context.Background())
	if res.Result != telemetry.ResultPublishFailed {
		t.Errorf("Result = %q, want publish_failed", res.Result)
	}
	var pubErr *publisher.PublishError
	if !errors.As(res.Err, &pubErr) {
		t.Errorf("Err = %v, want *PublishError", res.Err)
	}
}

func TestRunCycle_PanicIsRecovered(t *testing.T) {
	pub := &fakePublisher{}
	s := newScheduler(fakeSource{body: "node_load1 0.5\n"}, panickingExtractor{}, pub)

	res := s.RunCycle(context.Background())
	if res.Result != telemetry.ResultPanic {
		t.Errorf("Result = %q, want panic", res.Result)
	}
	if res.Err == nil {
		t.Error("Err = nil, want recovered panic")
	}
}

func TestStart_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := &fakePublisher{onCall: func(n int) {
		if n == 3 {
			cancel()
		}
	}}
	s := newScheduler(fakeSource{body: "node_load1 0.5\n"}, collector.NewDefaultRegistry(testCollection(), nil), pub)

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.calls != 3 {
		t.Errorf("publisher calls = %d, want 3", pub.calls)
	}
}

func TestStart_ReturnsImmediatelyWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pub := &fakePublisher{}
	s := newScheduler(fakeSource{body: "node_load1 0.5\n"}, collector.NewDefaultRegistry(testCollection(), nil), pub)
	s.Start(ctx)

	if pub.calls != 0 {
		t.Errorf("publisher calls = %d, want 0", pub.calls)
	}
}
