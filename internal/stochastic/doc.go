// Package stochastic generates discrete random events for the probability lab.
//
// Two laws are supported, selected by [Mode]:
//
//   - [Bernoulli]: coin flips sampled at a fixed 5 Hz, each Open with probability p
//   - [Poisson]: spike arrivals with rate λ = 5 + 45·rate Hz (thinning approximation)
//
// A [Generator] is stepped by the host once per frame and emits at most one
// [Event] per step. All randomness comes from an injected [Source] so tests
// can script outcomes exactly.
package stochastic
