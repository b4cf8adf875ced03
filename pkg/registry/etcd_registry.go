package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
)

// ServiceRegistry 基于租约把实例地址注册到 etcd
type ServiceRegistry struct {
	client      *clientv3.Client
	key         string
	serviceAddr string
	ttl         int64
	leaseID     clientv3.LeaseID
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
}

// ServiceKey etcd 中的实例键
func ServiceKey(serviceName, serviceID string) string {
	return fmt.Sprintf("/services/%s/%s", serviceName, serviceID)
}

// NewServiceRegistry 创建注册器，serviceAddr 为 host:port
func NewServiceRegistry(etcdCfg config.EtcdConfig, regCfg config.ServiceRegistryConfig, serviceAddr string) (*ServiceRegistry, error) {
	if len(etcdCfg.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints not configured")
	}
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   etcdCfg.Endpoints,
		DialTimeout: etcdCfg.DialTimeout,
		Username:    etcdCfg.Username,
		Password:    etcdCfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	serviceID := regCfg.ServiceID
	if serviceID == "" {
		serviceID = serviceAddr
	}
	ttl := int64(regCfg.TTL / time.Second)
	if ttl <= 0 {
		ttl = 30
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ServiceRegistry{
		client:      client,
		key:         ServiceKey(regCfg.ServiceName, serviceID),
		serviceAddr: serviceAddr,
		ttl:         ttl,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Register 申请租约并写入实例地址，随后后台续约
func (r *ServiceRegistry) Register() error {
	leaseResp, err := r.client.Grant(r.ctx, r.ttl)
	if err != nil {
		return fmt.Errorf("failed to grant lease: %w", err)
	}
	r.leaseID = leaseResp.ID

	if _, err := r.client.Put(r.ctx, r.key, r.serviceAddr, clientv3.WithLease(r.leaseID)); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	ch, err := r.client.KeepAlive(r.ctx, r.leaseID)
	if err != nil {
		return fmt.Errorf("failed to keep alive lease: %w", err)
	}
	go r.drain(ch)

	logger.Info("Service registered", map[string]interface{}{
		"key":  r.key,
		"addr": r.serviceAddr,
		"ttl":  r.ttl,
	})
	return nil
}

func (r *ServiceRegistry) drain(ch <-chan *clientv3.LeaseKeepAliveResponse) {
	for {
		select {
		case <-r.ctx.Done():
			return
		case ka, ok := <-ch:
			if !ok || ka == nil {
				logger.Warnf("Keep alive channel closed key=%s", r.key)
				return
			}
		}
	}
}

// Deregister 撤销租约并关闭客户端，可重复调用
func (r *ServiceRegistry) Deregister() error {
	var closeErr error
	r.closeOnce.Do(func() {
		r.cancel()
		if r.leaseID != 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if _, err := r.client.Revoke(ctx, r.leaseID); err != nil {
				logger.Warnf("Failed to revoke lease key=%s error=%v", r.key, err)
			}
			cancel()
		}
		if err := r.client.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close etcd client: %w", err)
			return
		}
		logger.Infof("Service deregistered key=%s", r.key)
	})
	return closeErr
}
