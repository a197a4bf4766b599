package helpers

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// GoroutineSnapshot records how many goroutines were alive at a moment.
type GoroutineSnapshot struct {
	Count int
	Taken time.Time
}

// TakeGoroutineSnapshot records the live goroutine count now.
func TakeGoroutineSnapshot() *GoroutineSnapshot {
	return &GoroutineSnapshot{Count: runtime.NumGoroutine(), Taken: time.Now()}
}

// WaitForGoroutineCleanup polls until at most baseline+tolerance goroutines
// remain. On timeout the error includes the surviving stacks so a leaking
// worker can be identified.
func WaitForGoroutineCleanup(maxWait time.Duration, baseline, tolerance int) (int, error) {
	deadline := time.Now().Add(maxWait)
	for {
		current := runtime.NumGoroutine()
		if current <= baseline+tolerance {
			return current, nil
		}
		if time.Now().After(deadline) {
			return current, fmt.Errorf("%d goroutines still running after %v (baseline %d, tolerance %d)\n%s",
				current, maxWait, baseline, tolerance, stacks())
		}
		runtime.GC()
		time.Sleep(25 * time.Millisecond)
	}
}

func stacks() string {
	buf := make([]byte, 1<<16)
	n := runtime.Stack(buf, true)
	if n == len(buf) {
		return string(buf) + "\n...truncated"
	}
	return string(bytes.TrimSpace(buf[:n]))
}

// DeadlockDetector bounds how long an operation under test may block.
type DeadlockDetector struct {
	timeout time.Duration
}

// NewDeadlockDetector returns a detector that gives up after timeout.
func NewDeadlockDetector(timeout time.Duration) *DeadlockDetector {
	return &DeadlockDetector{timeout: timeout}
}

// Run returns fn's error, or a timeout error if fn is still running when the
// detector gives up. The goroutine running fn is abandoned in that case.
func (dd *DeadlockDetector) Run(fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	timer := time.NewTimer(dd.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("still blocked after %v", dd.timeout)
	}
}

// CoordinatedStart launches n operations, releases them together once all
// are scheduled and collects the errors they return.
func CoordinatedStart(n int, op func(id int) error) []error {
	var (
		ready, finished sync.WaitGroup
		mu              sync.Mutex
		errs            []error
	)
	release := make(chan struct{})

	ready.Add(n)
	finished.Add(n)
	for i := 0; i < n; i++ {
		go func(id int) {
			defer finished.Done()
			ready.Done()
			<-release
			if err := op(id); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(i)
	}

	ready.Wait()
	close(release)
	finished.Wait()
	return errs
}
