package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGet_Hit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client, nil)

	stored, _ := json.Marshal(sample{Name: "gala", Count: 3})
	mock.ExpectGet("seatly:test:key").SetVal(string(stored))

	var out sample
	err := svc.Get(context.Background(), "seatly:test:key", &out)
	require.NoError(t, err)
	assert.Equal(t, "gala", out.Name)
	assert.Equal(t, 3, out.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client, nil)

	mock.ExpectGet("seatly:test:absent").RedisNil()

	var out sample
	err := svc.Get(context.Background(), "seatly:test:absent", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSet_MarshalsJSON(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client, nil)

	payload, _ := json.Marshal(sample{Name: "expo", Count: 1})
	mock.ExpectSet("seatly:test:key", payload, time.Minute).SetVal("OK")

	err := svc.Set(context.Background(), "seatly:test:key", sample{Name: "expo", Count: 1}, time.Minute)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSet_MissFetchesAndStores(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client, nil)

	payload, _ := json.Marshal(sample{Name: "fresh", Count: 7})
	mock.ExpectGet("seatly:test:ro").RedisNil()
	mock.ExpectSet("seatly:test:ro", payload, time.Minute).SetVal("OK")

	fetched := false
	var out sample
	err := svc.GetOrSet(context.Background(), "seatly:test:ro", &out, time.Minute, func() (interface{}, error) {
		fetched = true
		return sample{Name: "fresh", Count: 7}, nil
	})
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, "fresh", out.Name)
}

func TestGetOrSet_HitSkipsFetch(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client, nil)

	stored, _ := json.Marshal(sample{Name: "cached", Count: 2})
	mock.ExpectGet("seatly:test:ro").SetVal(string(stored))

	var out sample
	err := svc.GetOrSet(context.Background(), "seatly:test:ro", &out, time.Minute, func() (interface{}, error) {
		t.Fatal("fetch should not run on a cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cached", out.Name)
}

func TestDelete_NoKeysIsNoop(t *testing.T) {
	client, _ := redismock.NewClientMock()
	svc := NewService(client, nil)
	assert.NoError(t, svc.Delete(context.Background()))
}
