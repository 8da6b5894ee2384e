package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformsAreFixed(t *testing.T) {
	require.Len(t, Platforms, 3)
	assert.Equal(t, Platform{Name: "PlayStation", RemoteID: 7}, Platforms[0])
	assert.Equal(t, Platform{Name: "PlayStation 2", RemoteID: 8}, Platforms[1])
	assert.Equal(t, Platform{Name: "PlayStation Portable", RemoteID: 38}, Platforms[2])
}

func TestResolvePlatform(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"PlayStation", "PlayStation"},
		{"playstation 2", "PlayStation 2"},
		{"  PlayStation Portable ", "PlayStation Portable"},
		{"PSX", "PlayStation"},
		{"ps1", "PlayStation"},
		{"ps2", "PlayStation 2"},
		{"PSP", "PlayStation Portable"},
		{"portable", "PlayStation Portable"},
		{"station 2", "PlayStation 2"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ResolvePlatform(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestResolvePlatformErrors(t *testing.T) {
	_, err := ResolvePlatform("")
	assert.Error(t, err)

	_, err = ResolvePlatform("xbox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown platform")

	_, err = ResolvePlatform("playstaton")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestResolvePlatforms(t *testing.T) {
	all, err := ResolvePlatforms(nil)
	require.NoError(t, err)
	assert.Equal(t, Platforms, all)

	// Caller order is kept and duplicates collapse
	got, err := ResolvePlatforms([]string{"psp", "PlayStation", "ps1", "PlayStation Portable"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "PlayStation Portable", got[0].Name)
	assert.Equal(t, "PlayStation", got[1].Name)

	_, err = ResolvePlatforms([]string{"PlayStation", "dreamcast"})
	assert.Error(t, err)
}

func TestRunStatistics(t *testing.T) {
	a := RunStatistics{Downloaded: 2, Skipped: 1}
	b := RunStatistics{Skipped: 3, Failed: 1}

	sum := a.Add(b)
	assert.Equal(t, RunStatistics{Downloaded: 2, Skipped: 4, Failed: 1}, sum)
	assert.Equal(t, 7, sum.Total())
}

func TestCoverRecordHasCover(t *testing.T) {
	assert.True(t, CoverRecord{ImageURL: "//images.igdb.com/x.jpg"}.HasCover())
	assert.False(t, CoverRecord{Title: "Ico"}.HasCover())
}
