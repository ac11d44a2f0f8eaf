// Package jobs tracks long-running start-then-poll operations, one per key.
//
// Each key moves idle → polling → succeeded|failed. Starting a key again,
// whether it is terminal or still polling, cancels the previous poller and
// waits for it to exit before the new one begins, so a key never has two
// pollers. Reset and Close stop every poller before returning. Timers come
// from an injected Clock.
package jobs
