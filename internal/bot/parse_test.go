package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vessel-ops/internal/model"
)

func TestCallbackRoundTrip(t *testing.T) {
	id := "0b6f3c1e-9a7d-4c2b-8e5f-1a2b3c4d5e6f"
	data := callbackData(cbCompletePrefix, kindYard, id)
	assert.Equal(t, "complete:yard:"+id, data)
	assert.LessOrEqual(t, len(callbackData(cbConfirmPrefix+cbCompletePrefix, kindTask, id)), 64)

	action, kind, gotID, ok := parseCallback(data)
	require.True(t, ok)
	assert.Equal(t, cbCompletePrefix, action)
	assert.Equal(t, kindYard, kind)
	assert.Equal(t, id, gotID)
}

func TestParseCallback_Rejects(t *testing.T) {
	for _, data := range []string{"", "cancel", "complete:task:", "complete:ship:abc", "delete:task", "hub:WEEKLY"} {
		t.Run(data, func(t *testing.T) {
			_, _, _, ok := parseCallback(data)
			assert.False(t, ok)
		})
	}
}

func TestParseNewTask(t *testing.T) {
	input, err := parseNewTask("weekly Check bilge pumps | 2024-03-08 | 7")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryWeekly, input.Category)
	assert.Equal(t, "Check bilge pumps", input.Title)
	require.NotNil(t, input.DoneByDate)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), *input.DoneByDate)
	assert.Equal(t, model.Recur7Days, input.Recurrence)

	input, err = parseNewTask("daily Log engine hours | - | 14")
	require.NoError(t, err)
	assert.Nil(t, input.DoneByDate)
	assert.Equal(t, model.Recur14Days, input.Recurrence)

	input, err = parseNewTask("monthly Inventory")
	require.NoError(t, err)
	assert.Nil(t, input.DoneByDate)
	assert.Equal(t, model.RecurNone, input.Recurrence)
}

func TestParseNewTask_Errors(t *testing.T) {
	for _, args := range []string{"", "weekly", "yearly Something", "weekly Paint | 08.03.2024", "weekly Paint | 2024-03-08 | 10"} {
		t.Run(args, func(t *testing.T) {
			_, err := parseNewTask(args)
			assert.Error(t, err)
		})
	}
}

func TestParseNewYardJob(t *testing.T) {
	input, err := parseNewYardJob("Hull survey | 2024-06-01 | 30 | Damen Shiprepair")
	require.NoError(t, err)
	assert.Equal(t, "Hull survey", input.Title)
	assert.Equal(t, "Damen Shiprepair", input.Yard)
	assert.Equal(t, model.Recur30Days, input.Recurrence)
	require.NotNil(t, input.DoneByDate)

	input, err = parseNewYardJob("Renew anodes")
	require.NoError(t, err)
	assert.Empty(t, input.Yard)
	assert.Nil(t, input.DoneByDate)

	_, err = parseNewYardJob("  ")
	assert.Error(t, err)
}

func TestIsIDPrefix(t *testing.T) {
	assert.True(t, isIDPrefix("0b6f3c1e"))
	assert.True(t, isIDPrefix("0b6f3c1e-9a7d-4c2b-8e5f-1a2b3c4d5e6f"))
	assert.False(t, isIDPrefix("0b6"))
	assert.False(t, isIDPrefix("weekly"))
	assert.False(t, isIDPrefix("0B6F3C1E"))
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Check", shortTitle(" check ", 10))
	assert.Equal(t, "Inspect l…", shortTitle("inspect lifeboat davits", 10))
}
