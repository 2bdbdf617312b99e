// Package pool implements the bounded-concurrency worker pool that drains a
// batch of probe tasks.
//
// The pool seeds a FIFO channel with every task, spawns a fixed number of
// worker goroutines, and runs each dequeued task through a tight retry loop
// until its outcome is terminal. The channel is the only resource shared
// across workers (exactly-once delivery per task); each task's result is
// owned by exactly one worker.
package pool
