// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskcli/internal/api"
)

// FormatTask formats one task line.
// Format: "{N:>4}  [{x| }]  {TITLE}\n", with the description, when present,
// indented on its own line.
func FormatTask(w io.Writer, num int, task api.Task) {
	marker := " "
	if task.Completed {
		marker = "x"
	}
	fmt.Fprintf(w, "%4d  [%s]  %s\n", num, marker, normalizeLine(task.Title))

	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		fmt.Fprintf(w, "           %s\n", normalizeLine(*task.Description))
	}
}

// FormatTaskList formats the whole list, or the placeholder when empty.
func FormatTaskList(w io.Writer, tasks []api.Task, quiet bool) {
	if len(tasks) == 0 {
		if !quiet {
			fmt.Fprintln(w, "no tasks")
		}
		return
	}
	for i, task := range tasks {
		FormatTask(w, i+1, task)
	}
}

// FormatUser formats the profile block for whoami.
func FormatUser(w io.Writer, user api.User) {
	fmt.Fprintf(w, "%s\n", user.Username)
	fmt.Fprintf(w, "id:      %s\n", user.ID)
	fmt.Fprintf(w, "since:   %s\n", user.CreatedAt.Format("2006-01-02"))
}

// normalizeLine flattens newlines and replaces empty text with a
// placeholder.
func normalizeLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}
