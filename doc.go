// Package sovereign provides lease-based leader election for distributed Go
// services over a pluggable coordination store.
//
// Sovereign lets a cluster of identical instances agree on a single leader
// without running a dedicated consensus service of its own: leadership is a
// leased record in a shared key-value store (Redis, NATS JetStream KV, etcd,
// or in-memory for tests), renewed while the leader is healthy and taken
// over by followers when the lease expires or the leader's heartbeats go
// stale.
//
// # Quick Start
//
// Basic usage with the Redis backend:
//
//	import (
//	    "github.com/Traqueur-dev/Sovereign"
//	    redisstore "github.com/Traqueur-dev/Sovereign/store/redis"
//	    "github.com/redis/go-redis/v9"
//	)
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	cfg := sovereign.DefaultConfig()
//
//	election, err := sovereign.New("api-1", redisstore.New(client), &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	election.OnLeadershipAcquired(func(event sovereign.Event) error {
//	    log.Println("now the leader")
//	    return nil
//	}, false)
//
//	if err := election.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer election.Stop(context.Background())
//
// # Key Features
//
//   - Mutual Exclusion: At most one instance believes itself leader at a time
//   - Automatic Failover: Followers take over when the lease expires or heartbeats go stale
//   - Graceful Release: A stopping leader deletes its records so successors need not wait out the lease
//   - Pluggable Backends: Store adapters for Redis, NATS JetStream KV, etcd, and in-memory
//   - Event Bus: Synchronous or asynchronous listeners for role and leadership changes
//
// # Architecture
//
// Each instance runs two periodic cycles against the store. The election
// cycle reads the leader record and either claims it, renews it, or checks
// the current leader's health; the heartbeat cycle publishes a timestamped
// health record while leading. Instances move through a simple role machine:
//
//	FOLLOWER → LEADER → FOLLOWER
//
// Every role change is published on the event bus as a StateChangedEvent,
// with LeadershipAcquiredEvent and LeadershipLostEvent emitted on the
// transitions into and out of LEADER.
//
// # Advanced Usage
//
// Configuration-driven backend selection with options:
//
//	factory := sovereign.NewFactory()
//	factory.Register("redis", func(ctx context.Context, cfg *sovereign.Config) (sovereign.Store, error) {
//	    return redisstore.New(redis.NewClient(&redis.Options{Addr: addr})), nil
//	})
//
//	cfg := sovereign.DefaultConfig()
//	cfg.Backend = "redis"
//
//	election, err := factory.New(ctx, "api-1", &cfg,
//	    sovereign.WithLogger(logger),
//	    sovereign.WithMetrics(collector),
//	)
//
// See the examples/ directory for complete working examples.
package sovereign
