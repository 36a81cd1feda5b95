package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// PrintDemoResult writes the seeded accounts in a table operators can log
// in with.
func PrintDemoResult(w io.Writer, result *DemoBootstrapResult) {
	if result == nil || !result.Seeded {
		return
	}

	border := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\n", border)
	fmt.Fprintf(w, "DEMO DATA SEEDED\n")
	fmt.Fprintf(w, "%s\n", border)

	fmt.Fprintln(w, "\nDemo accounts:")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, u := range result.Users {
		fmt.Fprintf(w, "  %-12s %-28s %s\n", u.Role, u.Email, u.Name)
	}
	fmt.Fprintf(w, "\n  Password:  %s\n", result.Password)
	fmt.Fprintf(w, "  Employees: %d\n", result.Employees)
	fmt.Fprintf(w, "  Candidates: %d\n", result.Candidates)

	fmt.Fprintln(w, "\nReminder: the shared demo password is for local use only.")
	fmt.Fprintf(w, "%s\n\n", border)
}

// LogDemoSummary logs a concise summary using slog, without the password.
func LogDemoSummary(result *DemoBootstrapResult) {
	if result == nil || !result.Seeded {
		return
	}

	roles := make([]string, len(result.Users))
	for i, u := range result.Users {
		roles[i] = u.Role.String()
	}
	slog.Info("Demo seed summary",
		"users", len(result.Users),
		"roles", strings.Join(roles, ","),
		"employees", result.Employees,
		"candidates", result.Candidates,
	)
}
