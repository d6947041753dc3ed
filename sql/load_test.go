package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEventsSql(t *testing.T) {
	database := initDB(t)

	t.Run("Load events functions", func(t *testing.T) {
		err := LoadEventsSql(database.Instance, true)
		require.NoError(t, err, "Expected LoadEventsSql to not return an error")

		exist, err := checkFunctions(database.Instance, EventsFunctions)
		require.NoError(t, err)
		assert.True(t, exist, "Expected all events functions to exist")
	})

	t.Run("Load without force when functions exist", func(t *testing.T) {
		err := LoadEventsSql(database.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Init events table", func(t *testing.T) {
		_, err := database.Instance.Exec(`SELECT init_events($1);`, 3)
		require.NoError(t, err)

		var count int64
		err = database.Instance.QueryRow(`SELECT count_events();`).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestCheckFunctions(t *testing.T) {
	database := initDB(t)

	t.Run("Unknown function is reported missing", func(t *testing.T) {
		exist, err := checkFunctions(database.Instance, []string{"definitely_not_a_function"})
		require.NoError(t, err)
		assert.False(t, exist)
	})
}
