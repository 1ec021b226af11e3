// Package discovery announces storefront processes in etcd under a leased
// key so peers and load balancers can find live instances.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
)

const defaultLeaseTTL = 30

// Instance is one advertised endpoint of a named service.
type Instance struct {
	Name string
	Host string
	Port int
}

func (i Instance) Addr() string {
	return net.JoinHostPort(i.Host, strconv.Itoa(i.Port))
}

// KV is the slice of the etcd client the registry needs.
type KV interface {
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	KeepAlive(ctx context.Context, id clientv3.LeaseID) (<-chan *clientv3.LeaseKeepAliveResponse, error)
	Revoke(ctx context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error)
	Close() error
}

type Registry struct {
	kv     KV
	prefix string
	ttl    int64
	logger *zap.Logger

	mu     sync.Mutex
	leases map[string]clientv3.LeaseID
	stop   map[string]context.CancelFunc
}

func NewRegistry(cfg *config.EtcdConfig, logger *zap.Logger) (*Registry, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to etcd: %w", err)
	}
	return newRegistry(cli, cfg, logger), nil
}

func newRegistry(kv KV, cfg *config.EtcdConfig, logger *zap.Logger) *Registry {
	ttl := cfg.LeaseTTL
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	prefix := cfg.Prefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Registry{
		kv:     kv,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.Named("discovery"),
		leases: map[string]clientv3.LeaseID{},
		stop:   map[string]context.CancelFunc{},
	}
}

func (r *Registry) key(in Instance) string {
	return r.prefix + in.Name + "/" + in.Addr()
}

// Register puts the instance under a lease and keeps the lease alive until
// Deregister or Close.
func (r *Registry) Register(ctx context.Context, in Instance) error {
	lease, err := r.kv.Grant(ctx, r.ttl)
	if err != nil {
		return fmt.Errorf("grant lease: %w", err)
	}
	key := r.key(in)
	if _, err := r.kv.Put(ctx, key, in.Addr(), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("register %s: %w", key, err)
	}

	kaCtx, cancel := context.WithCancel(context.Background())
	ch, err := r.kv.KeepAlive(kaCtx, lease.ID)
	if err != nil {
		cancel()
		return fmt.Errorf("keep alive %s: %w", key, err)
	}

	r.mu.Lock()
	r.leases[key] = lease.ID
	r.stop[key] = cancel
	r.mu.Unlock()

	go func() {
		for range ch {
		}
		if kaCtx.Err() == nil {
			r.logger.Warn("etcd lease lost", zap.String("key", key))
		}
	}()

	r.logger.Info("service registered", zap.String("key", key), zap.Int64("ttl", r.ttl))
	return nil
}

// Discover lists the live instances of a service.
func (r *Registry) Discover(ctx context.Context, name string) ([]Instance, error) {
	resp, err := r.kv.Get(ctx, r.prefix+name+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", name, err)
	}

	out := make([]Instance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		host, portStr, err := net.SplitHostPort(string(kv.Value))
		if err != nil {
			r.logger.Warn("skipping malformed instance", zap.ByteString("key", kv.Key), zap.Error(err))
			continue
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			r.logger.Warn("skipping malformed instance", zap.ByteString("key", kv.Key), zap.Error(err))
			continue
		}
		out = append(out, Instance{Name: name, Host: host, Port: port})
	}
	return out, nil
}

func (r *Registry) Deregister(ctx context.Context, in Instance) error {
	key := r.key(in)

	r.mu.Lock()
	lease, leased := r.leases[key]
	cancel := r.stop[key]
	delete(r.leases, key)
	delete(r.stop, key)
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if leased {
		if _, err := r.kv.Revoke(ctx, lease); err != nil {
			return fmt.Errorf("revoke lease for %s: %w", key, err)
		}
		return nil
	}
	if _, err := r.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("deregister %s: %w", key, err)
	}
	return nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	for key, cancel := range r.stop {
		cancel()
		delete(r.stop, key)
	}
	r.mu.Unlock()
	return r.kv.Close()
}
