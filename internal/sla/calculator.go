// Package sla computes ticket deadlines and missed-deadline predicates.
// Deadlines are naive wall-clock offsets; no business-hours calendar applies.
package sla

import "time"

// ComputeDeadlines derives the initial-response and resolution deadlines from
// the company SLA config snapshot at ticket creation. A nil minutes value
// yields a nil deadline, meaning that SLA dimension is not tracked. Pure and
// deterministic; called once per ticket, at creation.
func ComputeDeadlines(createdAt time.Time, responseMinutes, resolutionMinutes *int) (irDeadline, resolutionDeadline *time.Time) {
	if responseMinutes != nil {
		d := createdAt.Add(time.Duration(*responseMinutes) * time.Minute)
		irDeadline = &d
	}
	if resolutionMinutes != nil {
		d := createdAt.Add(time.Duration(*resolutionMinutes) * time.Minute)
		resolutionDeadline = &d
	}
	return irDeadline, resolutionDeadline
}

// Missed reports whether a deadline has been missed. stoppedAt is the event
// that stops the SLA clock (first support reply for IR, resolution time for
// resolution SLA). Once set, it alone decides the outcome; until then the
// deadline is compared against now. A nil deadline is never missed.
func Missed(stoppedAt, deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return false
	}
	if stoppedAt != nil {
		return stoppedAt.After(*deadline)
	}
	return now.After(*deadline)
}

// Approaching reports whether a still-running SLA deadline falls inside
// (now, now+window]. Used by the monitoring warning queries.
func Approaching(stoppedAt, deadline *time.Time, now time.Time, window time.Duration) bool {
	if deadline == nil || stoppedAt != nil {
		return false
	}
	return deadline.After(now) && !deadline.After(now.Add(window))
}
