// Package session bridges the clock engine to the outside world.
//
// Controller applies the input policy (which press starts or switches the
// clock, when the increment is granted, when new settings take effect) and
// reports click and alarm signals. Runner is the single actor that owns a
// Controller: it serialises input events and ticks from a clockwork ticker,
// charges elapsed wall time to the active side, and publishes every Update
// to listeners and to the Hub.
package session
