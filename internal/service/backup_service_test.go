package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmaster/internal/models"
	"taskmaster/internal/repository"
)

func newBackupFixture(t *testing.T, seed *models.Snapshot) (*BackupService, *repository.StateRepository) {
	t.Helper()
	codec := repository.NewCodec(sequentialIDs(), 10)
	repo := repository.NewStateRepository(repository.NewMemoryStore(), testKey, codec)
	if seed != nil {
		require.NoError(t, repo.Save(context.Background(), *seed))
	}
	logger, _ := quietLogger()
	return NewBackupService(repo, codec, testKey, NewFakeClock(t0), logger), repo
}

func backupSeed() *models.Snapshot {
	done := t0.Add(time.Hour)
	return &models.Snapshot{
		User: models.User{Name: "ada", Coins: 60, DailyStreak: 3, LastCompletedDate: dayPtr(t0), LastBonusDate: dayPtr(t0)},
		Tasks: []models.Task{
			{ID: "b", Text: "open task", CreatedAt: t0, UpdatedAt: t0},
			{ID: "a", Text: "finished", Completed: true, CreatedAt: t0, UpdatedAt: done, CompletedAt: &done},
		},
		Leaderboard: []models.LeaderboardEntry{{Name: "ada", Coins: 60, Streak: 3, LastUpdated: done}},
	}
}

func TestParseBackupFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    BackupFormat
		wantErr bool
	}{
		{input: "json", want: FormatJSON},
		{input: "YAML", want: FormatYAML},
		{input: "yml", want: FormatYAML},
		{input: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseBackupFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, FormatYAML, FormatForPath("backup.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("dir/backup.YML"))
	assert.Equal(t, FormatJSON, FormatForPath("backup.json"))
	assert.Equal(t, FormatJSON, FormatForPath("backup"))
}

func TestBackupRoundTrip(t *testing.T) {
	for _, format := range []BackupFormat{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			ctx := context.Background()
			source, sourceRepo := newBackupFixture(t, backupSeed())

			var buf bytes.Buffer
			exported, err := source.Export(ctx, &buf, format)
			require.NoError(t, err)
			assert.Equal(t, BackupVersion, exported.Version)
			assert.Equal(t, testKey, exported.StorageKey)

			target, targetRepo := newBackupFixture(t, nil)
			imported, err := target.Import(ctx, &buf, format, false)
			require.NoError(t, err)
			assert.Len(t, imported.State.Tasks, 2)

			want, _, err := sourceRepo.Load(ctx)
			require.NoError(t, err)
			got, status, err := targetRepo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, repository.LoadFound, status)

			codec := repository.NewCodec(nil, 10)
			wantJSON, err := codec.Encode(want)
			require.NoError(t, err)
			gotJSON, err := codec.Encode(got)
			require.NoError(t, err)
			assert.JSONEq(t, string(wantJSON), string(gotJSON))
		})
	}
}

func TestBackupImportRefusesToOverwrite(t *testing.T) {
	ctx := context.Background()
	source, _ := newBackupFixture(t, backupSeed())
	var buf bytes.Buffer
	_, err := source.Export(ctx, &buf, FormatJSON)
	require.NoError(t, err)
	data := buf.String()

	existing := &models.Snapshot{User: models.User{Name: "bob"}}
	target, repo := newBackupFixture(t, existing)

	_, err = target.Import(ctx, strings.NewReader(data), FormatJSON, false)
	assert.ErrorIs(t, err, ErrStateExists)
	current, _, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", current.User.Name)

	_, err = target.Import(ctx, strings.NewReader(data), FormatJSON, true)
	require.NoError(t, err)
	current, _, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", current.User.Name)
}

func TestBackupImportRejectsBadInput(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		input  string
		format BackupFormat
	}{
		{name: "not json", input: "{", format: FormatJSON},
		{name: "missing version", input: `{"state":{}}`, format: FormatJSON},
		{name: "not yaml", input: "version: [", format: FormatYAML},
		{name: "unknown format", input: `{"version":"1.0"}`, format: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newBackupFixture(t, nil)
			_, err := svc.Import(ctx, strings.NewReader(tt.input), tt.format, true)
			assert.Error(t, err)

			_, status, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, repository.LoadMissing, status, "nothing written on failure")
		})
	}
}

func TestBackupImportRepairsState(t *testing.T) {
	ctx := context.Background()
	svc, repo := newBackupFixture(t, nil)

	input := `
version: "1.0"
state:
  user:
    name: " ada "
    coins: -4
  tasks:
    - id: x
      text: "  tidy desk "
      completed: true
    - id: x
      text: duplicate
  leaderboard: []
`
	_, err := svc.Import(ctx, strings.NewReader(input), FormatYAML, false)
	require.NoError(t, err)

	got, _, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.User.Name)
	assert.Zero(t, got.User.Coins)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "tidy desk", got.Tasks[0].Text)
	assert.NotNil(t, got.Tasks[0].CompletedAt)
}
