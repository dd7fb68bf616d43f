package main

import (
	"testing"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*3600)

func TestDateOrDefault(t *testing.T) {
	// 2024-03-16 00:30 JST 仍在 UTC 的 3/15
	now := time.Date(2024, 3, 15, 15, 30, 0, 0, time.UTC)

	d, err := dateOrDefault(nil, 0, now, jst, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", d.String())

	d, err = dateOrDefault(nil, 0, now, jst, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-14", d.String())

	d, err = dateOrDefault([]string{"2024-01-02"}, 0, now, jst, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", d.String())

	_, err = dateOrDefault([]string{"not-a-date"}, 0, now, jst, 1)
	assert.ErrorIs(t, err, models.ErrInvalidDate)
}

func TestDateRange(t *testing.T) {
	start := models.MustParseDate("2024-03-10")

	s, e, err := dateRange([]string{"2024-03-10"}, start)
	require.NoError(t, err)
	assert.Equal(t, start, s)
	assert.Equal(t, start, e)

	_, e, err = dateRange([]string{"2024-03-10", "2024-03-12"}, start)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-12", e.String())

	_, _, err = dateRange([]string{"2024-03-10", "2024-03-09"}, start)
	assert.Error(t, err)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"fit", "fit-range", "weather", "github", "serve", "listen", "credentials"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	cmd, _, err := root.Find([]string{"credentials", "import"})
	require.NoError(t, err)
	assert.Equal(t, "import", cmd.Name())
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
