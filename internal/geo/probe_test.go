package geo_test

import (
	"context"
	"testing"
	"time"

	"github.com/krishi-mitra/gateway/internal/geo"
)

func waitForSample(t *testing.T, probe *geo.Probe) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := probe.Sample(); ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for sample")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestProbeCachesClientReport(t *testing.T) {
	locator := geo.NewClientLocator()
	probe := geo.NewProbe(locator)
	probe.Run(context.Background())

	locator.Report(12.97, 77.59)
	waitForSample(t, probe)

	sample, ok := probe.Sample()
	if !ok {
		t.Fatal("expected cached sample")
	}
	if sample.Lat != 12.97 || sample.Lon != 77.59 {
		t.Fatalf("unexpected sample: %+v", sample)
	}
}

func TestProbeFirstReportWins(t *testing.T) {
	locator := geo.NewClientLocator()
	if !locator.Report(1, 2) {
		t.Fatal("first report must be accepted")
	}
	if locator.Report(3, 4) {
		t.Fatal("second report must be discarded")
	}

	probe := geo.NewProbe(locator)
	probe.Run(context.Background())
	waitForSample(t, probe)

	sample, _ := probe.Sample()
	if sample.Lat != 1 || sample.Lon != 2 {
		t.Fatalf("expected first fix, got %+v", sample)
	}
}

func TestProbePendingReportsAbsent(t *testing.T) {
	probe := geo.NewProbe(geo.NewClientLocator())
	probe.Run(context.Background())

	if _, ok := probe.Sample(); ok {
		t.Fatal("pending probe must report no location")
	}
}

func TestProbeUnsupportedStaysAbsent(t *testing.T) {
	probe := geo.NewProbe(geo.Unsupported())
	probe.Run(context.Background())

	time.Sleep(20 * time.Millisecond)
	if _, ok := probe.Sample(); ok {
		t.Fatal("unsupported platform must report no location")
	}
}

func TestProbeCancelledContextStaysAbsent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	probe := geo.NewProbe(geo.NewClientLocator())
	probe.Run(ctx)
	cancel()

	time.Sleep(20 * time.Millisecond)
	if _, ok := probe.Sample(); ok {
		t.Fatal("cancelled probe must report no location")
	}
}
