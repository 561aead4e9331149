package taskqueue

import "testing"

func TestEnqueueBeforeInitFails(t *testing.T) {
	if err := EnqueueSweep(); err == nil {
		t.Fatal("EnqueueSweep before InitClient must fail, not dereference a nil client")
	}
	if err := EnqueueBackup("u1"); err == nil {
		t.Fatal("EnqueueBackup before InitClient must fail, not dereference a nil client")
	}
}

func TestStopWorkersBeforeStart(t *testing.T) {
	// Shutdown can win the race against worker startup; stopping an
	// uninitialized queue is a no-op.
	StopWorkers()
}
