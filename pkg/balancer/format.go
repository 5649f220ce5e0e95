package balancer

import (
	"bytes"
	"fmt"

	"github.com/segmentio/topicbalance/pkg/util"
)

const maxTraceRows = 20

// FormatPlan creates a pretty table that summarizes the costs and the effects of a plan.
func FormatPlan(plan *Plan) string {
	buf := &bytes.Buffer{}

	table := util.NewTable(buf, []string{"Item", "Value"})

	var improvement float64
	if plan.InitialCost().Value != 0 {
		improvement = 100 * (plan.InitialCost().Value - plan.ProposalCost().Value) /
			plan.InitialCost().Value
	}

	table.AppendBulk(
		[][]string{
			{"Initial cost", fmt.Sprintf("%f", plan.InitialCost().Value)},
			{"Initial details", plan.InitialCost().Description()},
			{"Proposed cost", fmt.Sprintf("%f", plan.ProposalCost().Value)},
			{"Proposed details", plan.ProposalCost().Description()},
			{"Improvement", fmt.Sprintf("%.2f%%", improvement)},
			{"Moved partitions", fmt.Sprintf("%d", len(plan.Moves()))},
			{"Leader changes", fmt.Sprintf("%d", len(plan.LeaderChanges()))},
			{"Evaluations", fmt.Sprintf("%d", plan.Evaluations())},
			{"Evaluation rate", util.PrettyRate(plan.Evaluations(), plan.Elapsed())},
			{"Elapsed", util.PrettyDuration(plan.Elapsed())},
		},
	)

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// FormatTrace creates a pretty table with the improvements that led to a plan. Only the
// last improvements are shown for long searches.
func FormatTrace(plan *Plan) string {
	buf := &bytes.Buffer{}

	table := util.NewTable(buf, []string{"Worker", "Iteration", "Elapsed", "Cost"})

	trace := plan.Trace()
	if len(trace) > maxTraceRows {
		trace = trace[len(trace)-maxTraceRows:]
	}

	for _, step := range trace {
		table.Append(
			[]string{
				fmt.Sprintf("%d", step.Worker),
				fmt.Sprintf("%d", step.Iteration),
				util.PrettyDuration(step.Elapsed),
				fmt.Sprintf("%f", step.Cost.Value),
			},
		)
	}

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
