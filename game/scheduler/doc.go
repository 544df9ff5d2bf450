// Package scheduler fires the engine's delayed transitions.
//
// The engine never sleeps. After each command or transition it exposes at most
// one pending Transition carrying a delay and a sequence number. A Scheduler
// waits out the delay and fires it with AdvanceIf, so a transition superseded in
// the meantime is dropped instead of applied twice. Inline mode ignores delays
// and is used by tests and the simulate command.
package scheduler
