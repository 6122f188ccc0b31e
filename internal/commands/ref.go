package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"taskcli/internal/api"
	"taskcli/internal/app"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseRef parses a 1-based task number from args.
func ParseRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}

	ref := args[0]
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}

	num, err := strconv.Atoi(ref)
	if err != nil || num < 1 {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	return num, nil
}

// resolveRef maps a 1-based display number to the cached task.
func resolveRef(a *app.App, num int) (api.Task, error) {
	tasks := a.Tasks.Snapshot().Tasks
	if num < 1 || num > len(tasks) {
		return api.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	return tasks[num-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
