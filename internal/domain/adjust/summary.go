package adjust

import (
	"fmt"
	"time"

	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/domain/ledger"
)

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func remediationDescription(weak ledger.WeakArea, weeks int) string {
	return fmt.Sprintf("Targeted %s practice for %s before continuing the plan.",
		weak.Focus.Label(), plural(weeks, "week"))
}

func weakAreaSummary(weak ledger.WeakArea, weeks int, newTarget time.Time) string {
	return fmt.Sprintf(
		"%s is averaging %.1f, %.1f bands below your overall level. Added a %s remediation phase; target date moved to %s.",
		weak.Focus.Label(), weak.Average, weak.Deficit, plural(weeks, "week"),
		newTarget.Format(domain.DateLayout))
}

func slowerSummary(trend ledger.TrendResult, slip int, newTarget time.Time) string {
	return fmt.Sprintf(
		"Recent scores average %.1f against %.1f the week before. Extended the plan by %s to %s.",
		trend.RecentMean, trend.PriorMean, plural(slip, "week"), newTarget.Format(domain.DateLayout))
}

func fasterSummary(trend ledger.TrendResult, surplus int, newTarget time.Time) string {
	return fmt.Sprintf(
		"Recent scores average %.1f, up from %.1f the week before. Brought the target date forward by %s to %s.",
		trend.RecentMean, trend.PriorMean, plural(surplus, "week"), newTarget.Format(domain.DateLayout))
}

func retargetSummary(before, after *domain.LearningPath) string {
	if before.TargetScore != after.TargetScore {
		return fmt.Sprintf("Target changed from %s by %s to %s by %s; remaining phases replanned.",
			before.TargetScore, before.TargetDate.Format(domain.DateLayout),
			after.TargetScore, after.TargetDate.Format(domain.DateLayout))
	}
	return fmt.Sprintf("Target date changed from %s to %s; remaining phases replanned.",
		before.TargetDate.Format(domain.DateLayout), after.TargetDate.Format(domain.DateLayout))
}
