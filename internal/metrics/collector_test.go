package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// promauto registers on the default registry, so every test gets its
// own namespace to avoid duplicate registration panics.
var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("newscap_test_%d", seq)
}

func TestObserveInvocationCountsByOutcome(t *testing.T) {
	c := NewCollector(nextTestNamespace())

	c.ObserveInvocation("create_container", "ok", 20*time.Millisecond)
	c.ObserveInvocation("create_container", "ok", 30*time.Millisecond)
	c.ObserveInvocation("create_container", "error", 10*time.Millisecond)

	ok := testutil.ToFloat64(c.invocationsTotal.WithLabelValues("create_container", "ok"))
	if ok != 2 {
		t.Errorf("Expected 2 ok invocations, got %v", ok)
	}
	failed := testutil.ToFloat64(c.invocationsTotal.WithLabelValues("create_container", "error"))
	if failed != 1 {
		t.Errorf("Expected 1 failed invocation, got %v", failed)
	}
	if n := testutil.CollectAndCount(c.invocationDuration); n == 0 {
		t.Error("Expected invocation duration samples to be collected")
	}
}

func TestObserveTurnLabelsChannel(t *testing.T) {
	c := NewCollector(nextTestNamespace())

	c.ObserveTurn("emulator", "ok", 2*time.Second)
	c.ObserveTurn("webchat", "error", time.Second)

	if n := testutil.ToFloat64(c.turnsTotal.WithLabelValues("emulator", "ok")); n != 1 {
		t.Errorf("Expected 1 emulator turn, got %v", n)
	}
	if n := testutil.ToFloat64(c.turnsTotal.WithLabelValues("webchat", "error")); n != 1 {
		t.Errorf("Expected 1 failed webchat turn, got %v", n)
	}
}

func TestObserveCatalogRefreshKeepsGaugeOnError(t *testing.T) {
	c := NewCollector(nextTestNamespace())

	c.ObserveCatalogRefresh("ok", 4)
	if n := testutil.ToFloat64(c.catalogTools); n != 4 {
		t.Errorf("Expected 4 registered tools, got %v", n)
	}

	// A failed refresh keeps the previous stub set serving
	c.ObserveCatalogRefresh("error", 0)
	if n := testutil.ToFloat64(c.catalogTools); n != 4 {
		t.Errorf("Expected gauge to stay at 4 after a failed refresh, got %v", n)
	}

	if n := testutil.ToFloat64(c.catalogRefreshes.WithLabelValues("ok")); n != 1 {
		t.Errorf("Expected 1 ok refresh, got %v", n)
	}
	if n := testutil.ToFloat64(c.catalogRefreshes.WithLabelValues("error")); n != 1 {
		t.Errorf("Expected 1 failed refresh, got %v", n)
	}
}

func TestObserveMCPRequest(t *testing.T) {
	c := NewCollector(nextTestNamespace())

	c.ObserveMCPRequest("tools/list", 40*time.Millisecond)
	c.ObserveMCPRequest("tools/call", 150*time.Millisecond)

	if n := testutil.CollectAndCount(c.mcpRequestDuration); n != 2 {
		t.Errorf("Expected 2 request duration series, got %d", n)
	}
}

func TestSetWebchatSessions(t *testing.T) {
	c := NewCollector(nextTestNamespace())

	c.SetWebchatSessions(2)
	if n := testutil.ToFloat64(c.wsSessions); n != 2 {
		t.Errorf("Expected 2 sessions, got %v", n)
	}

	c.SetWebchatSessions(0)
	if n := testutil.ToFloat64(c.wsSessions); n != 0 {
		t.Errorf("Expected 0 sessions, got %v", n)
	}
}
