package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"promotion/events"
	"promotion/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*AssignmentStore, *memoryRepository, *RecordingPublisher) {
	t.Helper()
	repo := newMemoryRepository()
	publisher := &RecordingPublisher{}
	return NewAssignmentStore(repo, publisher), repo, publisher
}

func mustCreate(t *testing.T, store *AssignmentStore, guildID, roleID, channelID, template string) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), guildID, roleID, channelID, template))
}

func TestAssignmentStore_CreateKeepsAppendOrder(t *testing.T) {
	store, repo, publisher := newTestStore(t)

	mustCreate(t, store, "1", "10", "100", "first")
	mustCreate(t, store, "1", "10", "100", "second")
	mustCreate(t, store, "1", "10", "100", "first")
	mustCreate(t, store, "1", "10", "200", "other channel")
	mustCreate(t, store, "1", "11", "100", "other role")

	expected := models.GuildAssignments{
		"10": {
			"100": {"first", "second", "first"},
			"200": {"other channel"},
		},
		"11": {
			"100": {"other role"},
		},
	}
	assert.Equal(t, expected, store.Guild("1"))
	assert.Equal(t, expected, repo.documents["1"])
	assert.Equal(t, 5, repo.saves)
	require.Len(t, publisher.Events, 5)
	assert.Equal(t, events.AssignmentActionCreated, publisher.Events[0].(events.AssignmentsChangedEvent).Action)
}

func TestAssignmentStore_GuildsAreIsolated(t *testing.T) {
	store, _, _ := newTestStore(t)

	mustCreate(t, store, "1", "10", "100", "guild one")
	mustCreate(t, store, "2", "10", "100", "guild two")

	assert.Equal(t, []string{"guild one"}, store.Role("1", "10")["100"])
	assert.Equal(t, []string{"guild two"}, store.Role("2", "10")["100"])
	assert.Nil(t, store.Guild("3"))
	assert.Nil(t, store.Role("3", "10"))
}

func TestAssignmentStore_ReadsAreCopies(t *testing.T) {
	store, _, _ := newTestStore(t)
	mustCreate(t, store, "1", "10", "100", "hello")

	g := store.Guild("1")
	g["10"]["100"][0] = "changed"
	delete(g, "10")

	assert.Equal(t, []string{"hello"}, store.Role("1", "10")["100"])
}

func TestAssignmentStore_Delete(t *testing.T) {
	seed := func(t *testing.T) *AssignmentStore {
		store, _, _ := newTestStore(t)
		mustCreate(t, store, "1", "10", "100", "a")
		mustCreate(t, store, "1", "10", "100", "b")
		mustCreate(t, store, "1", "10", "200", "c")
		mustCreate(t, store, "1", "11", "100", "d")
		mustCreate(t, store, "1", "12", "300", "e")
		return store
	}

	tests := []struct {
		name            string
		request         DeleteRequest
		expectedRemoved int
		expected        models.GuildAssignments
	}{
		{
			name:            "whole guild",
			request:         NewDeleteRequest("", "", ""),
			expectedRemoved: 5,
			expected:        models.GuildAssignments{},
		},
		{
			name:            "one role",
			request:         NewDeleteRequest("10", "", ""),
			expectedRemoved: 3,
			expected: models.GuildAssignments{
				"11": {"100": {"d"}},
				"12": {"300": {"e"}},
			},
		},
		{
			name:            "role in channel keeps other channels",
			request:         NewDeleteRequest("10", "100", ""),
			expectedRemoved: 2,
			expected: models.GuildAssignments{
				"10": {"200": {"c"}},
				"11": {"100": {"d"}},
				"12": {"300": {"e"}},
			},
		},
		{
			name:            "last channel of a role prunes the role",
			request:         NewDeleteRequest("12", "300", ""),
			expectedRemoved: 1,
			expected: models.GuildAssignments{
				"10": {"100": {"a", "b"}, "200": {"c"}},
				"11": {"100": {"d"}},
			},
		},
		{
			name:            "single message",
			request:         NewDeleteRequest("10", "100", "a"),
			expectedRemoved: 1,
			expected: models.GuildAssignments{
				"10": {"100": {"b"}, "200": {"c"}},
				"11": {"100": {"d"}},
				"12": {"300": {"e"}},
			},
		},
		{
			name:            "only message prunes channel and role",
			request:         NewDeleteRequest("11", "100", "d"),
			expectedRemoved: 1,
			expected: models.GuildAssignments{
				"10": {"100": {"a", "b"}, "200": {"c"}},
				"12": {"300": {"e"}},
			},
		},
		{
			name:            "channel across roles",
			request:         NewDeleteRequest("", "100", ""),
			expectedRemoved: 3,
			expected: models.GuildAssignments{
				"10": {"200": {"c"}},
				"12": {"300": {"e"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seed(t)

			require.True(t, store.Exists("1", tt.request))
			result, err := store.Delete(context.Background(), "1", tt.request)

			require.NoError(t, err)
			assert.Equal(t, tt.request.Scope, result.Scope)
			assert.Equal(t, tt.expectedRemoved, result.Removed)
			assert.Equal(t, tt.expected.Count(), result.Remaining)
			assert.Equal(t, tt.expected, store.Guild("1"))
		})
	}
}

func TestAssignmentStore_DeleteDuplicateMessageRemovesFirstOnly(t *testing.T) {
	store, _, _ := newTestStore(t)
	mustCreate(t, store, "1", "10", "100", "x")
	mustCreate(t, store, "1", "10", "100", "y")
	mustCreate(t, store, "1", "10", "100", "x")

	_, err := store.Delete(context.Background(), "1", NewDeleteRequest("10", "100", "x"))

	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, store.Role("1", "10")["100"])
}

func TestAssignmentStore_DeleteNotFound(t *testing.T) {
	store, repo, _ := newTestStore(t)
	mustCreate(t, store, "1", "10", "100", "a")
	savesBefore := repo.saves

	requests := map[string]DeleteRequest{
		"unknown guild":   NewDeleteRequest("", "", ""),
		"unknown role":    NewDeleteRequest("99", "", ""),
		"unknown channel": NewDeleteRequest("10", "999", ""),
		"unknown message": NewDeleteRequest("10", "100", "nope"),
		"unused channel":  NewDeleteRequest("", "999", ""),
	}

	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			guildID := "1"
			if name == "unknown guild" {
				guildID = "2"
			}

			assert.False(t, store.Exists(guildID, req))
			_, err := store.Delete(context.Background(), guildID, req)
			assert.ErrorIs(t, err, ErrAssignmentNotFound)
		})
	}

	assert.Equal(t, savesBefore, repo.saves)
	assert.Equal(t, []string{"a"}, store.Role("1", "10")["100"])
}

func TestAssignmentStore_DeleteEmptyGuildIsNotFound(t *testing.T) {
	store, _, _ := newTestStore(t)
	mustCreate(t, store, "1", "10", "100", "a")

	_, err := store.Delete(context.Background(), "1", NewDeleteRequest("", "", ""))
	require.NoError(t, err)

	_, err = store.Delete(context.Background(), "1", NewDeleteRequest("", "", ""))
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAssignmentStore_DeleteInvalidScope(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.Delete(context.Background(), "1", NewDeleteRequest("", "", "message only"))

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAssignmentStore_DeleteGuildKeepsGuildDocument(t *testing.T) {
	store, repo, _ := newTestStore(t)
	mustCreate(t, store, "1", "10", "100", "a")

	_, err := store.Delete(context.Background(), "1", NewDeleteRequest("", "", ""))
	require.NoError(t, err)

	require.Contains(t, repo.documents, "1")
	assert.Empty(t, repo.documents["1"])
	assert.Contains(t, store.Snapshot(), "1")
}

func TestAssignmentStore_SaveLoadRoundTrip(t *testing.T) {
	store, repo, _ := newTestStore(t)
	mustCreate(t, store, "1", "10", "100", "b")
	mustCreate(t, store, "1", "10", "100", "a")
	mustCreate(t, store, "2", "20", "200", "{user_name}")

	require.NoError(t, store.Save(context.Background()))

	reloaded := NewAssignmentStore(repo, nil)
	require.NoError(t, reloaded.Load(context.Background()))

	assert.Equal(t, store.Snapshot(), reloaded.Snapshot())
	assert.Equal(t, []string{"b", "a"}, reloaded.Role("1", "10")["100"])
}

func TestAssignmentStore_LoadKeepsPartialResult(t *testing.T) {
	repo := new(MockAssignmentRepository)
	partial := models.Assignments{"1": {"10": {"100": {"kept"}}}}
	repo.On("LoadAll", mock.Anything).Return(partial, errors.New("bad json in 2.json"))

	store := NewAssignmentStore(repo, nil)
	err := store.Load(context.Background())

	assert.ErrorContains(t, err, "bad json")
	assert.Equal(t, []string{"kept"}, store.Role("1", "10")["100"])
	repo.AssertExpectations(t)
}

func TestAssignmentStore_SaveAggregatesErrors(t *testing.T) {
	repo := new(MockAssignmentRepository)
	repo.On("LoadAll", mock.Anything).Return(models.Assignments{
		"1": {"10": {"100": {"a"}}},
		"2": {"20": {"200": {"b"}}},
		"3": {"30": {"300": {"c"}}},
	}, nil)
	repo.On("SaveGuild", mock.Anything, "1", mock.Anything).Return(errors.New("disk full"))
	repo.On("SaveGuild", mock.Anything, "2", mock.Anything).Return(nil)
	repo.On("SaveGuild", mock.Anything, "3", mock.Anything).Return(errors.New("permission denied"))

	store := NewAssignmentStore(repo, nil)
	require.NoError(t, store.Load(context.Background()))

	err := store.Save(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "permission denied")
	assert.Less(t, strings.Index(err.Error(), "guild 1"), strings.Index(err.Error(), "guild 3"), "guilds are saved in ID order")
	repo.AssertNumberOfCalls(t, "SaveGuild", 3)
}

func TestAssignmentStore_CreatePersistFailureIsReported(t *testing.T) {
	repo := new(MockAssignmentRepository)
	repo.On("SaveGuild", mock.Anything, "1", mock.Anything).Return(errors.New("read-only file system"))
	publisher := &RecordingPublisher{}

	store := NewAssignmentStore(repo, publisher)
	err := store.Create(context.Background(), "1", "10", "100", "hello")

	assert.ErrorContains(t, err, "read-only file system")
	assert.Empty(t, publisher.Events)
}

func TestAssignmentStore_ConcurrentCreatesInOneGuild(t *testing.T) {
	store, repo, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Create(context.Background(), "1", "10", "100", "hello"))
		}()
	}
	wg.Wait()

	assert.Len(t, store.Role("1", "10")["100"], 50)
	assert.Len(t, repo.documents["1"]["10"]["100"], 50)
}
