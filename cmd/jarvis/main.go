package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Every requested stage succeeded
	ExitStageFailed = 1 // One or more stages returned a failed outcome
	ExitError       = 2 // Configuration or runtime error
)

// StageFailureError indicates that the session ran but one or more stages
// produced a failed outcome.
type StageFailureError struct {
	Stages []string
}

func (e *StageFailureError) Error() string {
	return fmt.Sprintf("%d stage(s) failed: %s", len(e.Stages), strings.Join(e.Stages, ", "))
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var stageErr *StageFailureError
		if errors.As(err, &stageErr) {
			os.Exit(ExitStageFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
