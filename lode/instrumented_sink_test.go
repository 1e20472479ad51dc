package lode

import (
	"context"
	"errors"
	"testing"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/metrics"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/policy"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

func TestInstrumentedSink_CountsWrites(t *testing.T) {
	inner := policy.NewStubSink()
	collector := metrics.NewCollector("strict", "fs", "run-001", "pclp")
	sink := NewInstrumentedSink(inner, collector)
	ctx := context.Background()

	if err := sink.WriteGroups(ctx, []*types.GroupEnvelope{testGroup("run-001", 1)}); err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteRun(ctx, testSummary("run-001", nil, 1)); err != nil {
		t.Fatal(err)
	}

	inner.SetError(errors.New("disk full"))
	if err := sink.WriteGroups(ctx, []*types.GroupEnvelope{testGroup("run-001", 2)}); err == nil {
		t.Fatal("expected inner error to pass through")
	}

	snap := collector.Snapshot()
	if snap.LodeWriteSuccess != 2 {
		t.Errorf("LodeWriteSuccess = %d, want 2", snap.LodeWriteSuccess)
	}
	if snap.LodeWriteFailure != 1 {
		t.Errorf("LodeWriteFailure = %d, want 1", snap.LodeWriteFailure)
	}

	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
	if !inner.Stats().Closed {
		t.Error("inner sink not closed")
	}
}

func TestInstrumentedSink_NilCollector(t *testing.T) {
	sink := NewInstrumentedSink(policy.NewStubSink(), nil)
	if err := sink.WriteRun(context.Background(), testSummary("run-001", nil, 1)); err != nil {
		t.Fatal(err)
	}
}
