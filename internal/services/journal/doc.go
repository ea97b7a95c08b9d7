// Package journal plays a list of dreams on a clock shared by every viewer
// and records each dream once it has been shown.
//
// Subpackages split the work: sentence and timeline lay the dreams out in
// time, render turns a playhead into a frame, player drives the clock, and
// gateway with storage and remote keep the resulting log.
package journal
