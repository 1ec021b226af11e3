package discovery

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
)

type memKV struct {
	mu      sync.Mutex
	data    map[string]string
	leaseOf map[string]clientv3.LeaseID
	ttls    []int64
	next    clientv3.LeaseID
	putErr  error
	closed  bool
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, leaseOf: map[string]clientv3.LeaseID{}}
}

func (m *memKV) Grant(_ context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.ttls = append(m.ttls, ttl)
	return &clientv3.LeaseGrantResponse{ID: m.next, TTL: ttl}, nil
}

func (m *memKV) Put(_ context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.data[key] = val
	m.leaseOf[key] = m.next
	return &clientv3.PutResponse{}, nil
}

func (m *memKV) Get(_ context.Context, key string, _ ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, key) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	resp := &clientv3.GetResponse{}
	for _, k := range keys {
		resp.Kvs = append(resp.Kvs, &mvccpb.KeyValue{Key: []byte(k), Value: []byte(m.data[k])})
	}
	return resp, nil
}

func (m *memKV) Delete(_ context.Context, key string, _ ...clientv3.OpOption) (*clientv3.DeleteResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return &clientv3.DeleteResponse{}, nil
}

func (m *memKV) KeepAlive(ctx context.Context, _ clientv3.LeaseID) (<-chan *clientv3.LeaseKeepAliveResponse, error) {
	ch := make(chan *clientv3.LeaseKeepAliveResponse)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (m *memKV) Revoke(_ context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, l := range m.leaseOf {
		if l == id {
			delete(m.data, k)
			delete(m.leaseOf, k)
		}
	}
	return &clientv3.LeaseRevokeResponse{}, nil
}

func (m *memKV) Close() error {
	m.closed = true
	return nil
}

func TestRegisterDiscoverDeregister(t *testing.T) {
	kv := newMemKV()
	r := newRegistry(kv, &config.EtcdConfig{Prefix: "/services"}, zap.NewNop())
	ctx := context.Background()

	a := Instance{Name: "storefront", Host: "10.0.0.1", Port: 5000}
	b := Instance{Name: "storefront", Host: "10.0.0.2", Port: 5000}
	require.NoError(t, r.Register(ctx, a))
	require.NoError(t, r.Register(ctx, b))
	assert.Equal(t, []int64{defaultLeaseTTL, defaultLeaseTTL}, kv.ttls)
	assert.Equal(t, "10.0.0.1:5000", kv.data["/services/storefront/10.0.0.1:5000"])

	got, err := r.Discover(ctx, "storefront")
	require.NoError(t, err)
	assert.Equal(t, []Instance{a, b}, got)

	require.NoError(t, r.Deregister(ctx, a))
	got, err = r.Discover(ctx, "storefront")
	require.NoError(t, err)
	assert.Equal(t, []Instance{b}, got)

	require.NoError(t, r.Close())
	assert.True(t, kv.closed)
}

func TestDiscoverSkipsMalformedValues(t *testing.T) {
	kv := newMemKV()
	kv.data["/services/storefront/bad"] = "not-an-address"
	kv.data["/services/storefront/good"] = "[::1]:5000"
	r := newRegistry(kv, &config.EtcdConfig{Prefix: "/services/", LeaseTTL: 10}, zap.NewNop())

	got, err := r.Discover(context.Background(), "storefront")
	require.NoError(t, err)
	assert.Equal(t, []Instance{{Name: "storefront", Host: "::1", Port: 5000}}, got)
}

func TestRegisterPutFailure(t *testing.T) {
	kv := newMemKV()
	kv.putErr = errors.New("etcdserver: request timed out")
	r := newRegistry(kv, &config.EtcdConfig{Prefix: "/services/", LeaseTTL: 10}, zap.NewNop())

	err := r.Register(context.Background(), Instance{Name: "storefront", Host: "h", Port: 1})
	require.ErrorIs(t, err, kv.putErr)
	assert.Equal(t, []int64{10}, kv.ttls)
	assert.Empty(t, r.leases)
}
