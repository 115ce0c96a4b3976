package monitor

import "github.com/Kira-Projects/teleton/internal/models"

// DetectCompletion reports a falling edge on IsRunning: the job was running on
// the previous poll and is not running now.
//
// IsReady is deliberately ignored. Output from an earlier run can stay ready
// while a new run is in progress, so only the falling edge marks "this run
// just finished".
func DetectCompletion(previousIsRunning bool, current models.JobStatus) bool {
	return previousIsRunning && !current.IsRunning
}

// CompletionFlags applies DetectCompletion across a sequence of IsRunning values.
// The first element has no previous value and is always false.
func CompletionFlags(running []bool) []bool {
	flags := make([]bool, len(running))
	for i := 1; i < len(running); i++ {
		flags[i] = DetectCompletion(running[i-1], models.JobStatus{IsRunning: running[i]})
	}
	return flags
}
