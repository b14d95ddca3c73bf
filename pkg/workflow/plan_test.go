package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskList(t *testing.T) {
	text := "Research Agent: Gather background material\n" +
		"Analysis Agent: Evaluate the findings\n"

	tasks := ParseTaskList(text)

	require.Len(t, tasks, 2)
	assert.Equal(t, "Research Agent", tasks[0].Agent)
	assert.Equal(t, "Gather background material", tasks[0].Description)
	assert.Equal(t, "Analysis Agent", tasks[1].Agent)
}

func TestParseTaskListStripsMarkers(t *testing.T) {
	text := "- Research Agent: gather\n" +
		"2. Analysis Agent: analyze\n" +
		"* Synthesis Agent: synthesize\n"

	tasks := ParseTaskList(text)

	require.Len(t, tasks, 3)
	assert.Equal(t, "Research Agent", tasks[0].Agent)
	assert.Equal(t, "Analysis Agent", tasks[1].Agent)
	assert.Equal(t, "Synthesis Agent", tasks[2].Agent)
}

func TestParseTaskListCapsAtFour(t *testing.T) {
	text := "A: one\nB: two\nC: three\nD: four\nE: five\n"

	tasks := ParseTaskList(text)

	assert.Len(t, tasks, 4)
}

func TestParseTaskListSkipsNoise(t *testing.T) {
	text := "Here are the subtasks\n" +
		"\n" +
		"Research Agent: gather data\n" +
		"just a line without separator\n"

	tasks := ParseTaskList(text)

	require.Len(t, tasks, 1)
	assert.Equal(t, "Research Agent", tasks[0].Agent)
}

func TestParseTaskListEmpty(t *testing.T) {
	assert.Empty(t, ParseTaskList("no structure at all"))
	assert.Empty(t, ParseTaskList(""))
}

func TestSimulatedPlansCoverAllTypes(t *testing.T) {
	for _, wt := range []WorkflowType{
		TypeExplanation, TypeSummarization, TypeResearch, TypeCodeGeneration, TypeGeneralQuery,
	} {
		names := simulatedPlans[wt]
		assert.GreaterOrEqual(t, len(names), 2, "plan for %s", wt)
		assert.LessOrEqual(t, len(names), 4, "plan for %s", wt)
	}
}
