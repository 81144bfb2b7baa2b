// Package pipeline runs scan jobs through a sequence of steps.
//
// Each file to check becomes a Job. A Pipeline executes its Steps against
// the job in order: the scan step folds the file into a result, and the
// optional save step stores it in the history database. A BatchProcessor
// runs one fresh pipeline per file with bounded concurrency and returns
// the jobs in argument order.
package pipeline
