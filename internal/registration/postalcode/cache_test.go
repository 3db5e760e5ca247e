package postalcode_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"signup/internal/registration/metrics"
	"signup/internal/registration/models"
	"signup/internal/registration/postalcode"
	"signup/internal/registration/postalcode/mocks"
)

// Nothing listens on the address, so every Redis call fails fast.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCachedClientDegradesToUpstreamWhenRedisFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockClient(ctrl)
	addr := models.AddressRecord{Street: "Avenida Paulista", City: "São Paulo", StateCode: "SP"}
	next.EXPECT().Lookup(gomock.Any(), "01310100").Return(postalcode.Found(addr)).Times(2)

	m := metrics.New(prometheus.NewRegistry())
	client := postalcode.NewCachedClient(next, unreachableRedis(t), time.Hour, m, nil)

	for range 2 {
		res := client.Lookup(context.Background(), "01310100")
		assert.Equal(t, postalcode.StatusFound, res.Status)
		assert.Equal(t, addr, res.Address)
		assert.False(t, res.Cached)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LookupCacheMissTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LookupCacheHitsTotal))
}

func TestCachedClientPassesThroughNonFoundResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockClient(ctrl)
	next.EXPECT().Lookup(gomock.Any(), "99999999").Return(postalcode.NotFound())

	client := postalcode.NewCachedClient(next, unreachableRedis(t), time.Hour, nil, nil)
	assert.Equal(t, postalcode.StatusNotFound, client.Lookup(context.Background(), "99999999").Status)
}
