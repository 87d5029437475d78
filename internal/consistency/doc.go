// Package consistency repairs timing in an aligned word sequence.
//
// Validate never fails and never mutates its input. It returns a corrected
// copy plus one warning per correction, applying these passes in order:
// negative time clamp, reversed interval clamp, overlap resolution at the
// midpoint, then smoothing of near-zero durations from adjacent gaps.
package consistency
