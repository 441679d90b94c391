package domain

import "math"

// DashboardStats aggregates the role-visible issue and project sets.
// Closed issues count toward the total but are not tracked in their
// own bucket.
type DashboardStats struct {
	TotalIssues      int `json:"total_issues"`
	OpenIssues       int `json:"open_issues"`
	InProgressIssues int `json:"in_progress_issues"`
	ResolvedIssues   int `json:"resolved_issues"`
	CriticalIssues   int `json:"critical_issues"`
	TotalProjects    int `json:"total_projects"`
	CompletionRate   int `json:"completion_rate"`
}

// ComputeStats derives dashboard statistics from the given visible
// sets. Nothing is cached; callers recompute on every request.
func ComputeStats(issues []Issue, projects []Project) DashboardStats {
	stats := DashboardStats{
		TotalIssues:   len(issues),
		TotalProjects: len(projects),
	}
	for _, issue := range issues {
		switch issue.Status {
		case IssueStatusOpen:
			stats.OpenIssues++
		case IssueStatusInProgress:
			stats.InProgressIssues++
		case IssueStatusResolved:
			stats.ResolvedIssues++
		}
		if issue.Priority == IssuePriorityCritical {
			stats.CriticalIssues++
		}
	}
	if stats.TotalIssues > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.ResolvedIssues) / float64(stats.TotalIssues) * 100))
	}
	return stats
}
