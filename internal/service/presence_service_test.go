package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athro-ai/athro-study-api/internal/dto"
)

type mockPresenceStore struct {
	keys     map[string]string
	setErr   error
	count    int
	countErr error
}

func (m *mockPresenceStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.keys == nil {
		m.keys = make(map[string]string)
	}
	m.keys[key] = value
	return nil
}

func (m *mockPresenceStore) CountByPattern(ctx context.Context, pattern string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func TestHeartbeatSingleTab(t *testing.T) {
	store := &mockPresenceStore{count: 1}
	svc := NewPresenceService(store, nil, nil, 45*time.Second)

	resp, err := svc.Heartbeat(context.Background(), "user-1", dto.HeartbeatRequest{TabID: "tab-a"})
	require.NoError(t, err)
	assert.False(t, resp.MultipleTabs)
	assert.Equal(t, 1, resp.ActiveTabs)
	assert.Contains(t, store.keys, "athro:presence:user-1:tab-a")
}

func TestHeartbeatDetectsSiblingTabs(t *testing.T) {
	store := &mockPresenceStore{count: 3}
	svc := NewPresenceService(store, nil, nil, 45*time.Second)

	resp, err := svc.Heartbeat(context.Background(), "user-1", dto.HeartbeatRequest{TabID: "tab-a"})
	require.NoError(t, err)
	assert.True(t, resp.MultipleTabs)
	assert.Equal(t, 3, resp.ActiveTabs)
}

func TestHeartbeatDegradesWhenStoreUnavailable(t *testing.T) {
	store := &mockPresenceStore{setErr: errors.New("redis gone"), countErr: errors.New("redis gone")}
	svc := NewPresenceService(store, nil, nil, 45*time.Second)

	// Store failures never surface to the caller; the tab counts as alone.
	resp, err := svc.Heartbeat(context.Background(), "user-1", dto.HeartbeatRequest{TabID: "tab-a"})
	require.NoError(t, err)
	assert.False(t, resp.MultipleTabs)
	assert.Equal(t, 1, resp.ActiveTabs)
}

func TestHeartbeatRequiresTabID(t *testing.T) {
	svc := NewPresenceService(&mockPresenceStore{}, nil, nil, 45*time.Second)

	_, err := svc.Heartbeat(context.Background(), "user-1", dto.HeartbeatRequest{})
	require.Error(t, err)
}
