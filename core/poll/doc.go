// Package poll implements a bounded fixed-interval polling policy for awaiting
// asynchronous state transitions, such as an ACME order leaving its pending
// state. Unlike an unbounded loop, the policy fails with ErrBudgetExhausted
// once its attempt budget runs out, so a stalled remote service cannot hang a
// run forever. The sleep function is injectable, which lets tests drive the
// policy without real time delays.
package poll
