// Package processor hosts the workers that run blocking operation work away
// from the scheduler's dispatch goroutine. Every worker consumes jobs from a
// queue and reports the outcome through the job's Done callback, retrying
// failed jobs while the queue permits redelivery.
package processor
