package graphstore

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Store wraps a Bolt driver connection. Unlike the original tool's
// module-level singleton driver, construction is explicit here so tests
// can point it at a disposable instance and the orchestrator can close
// it deterministically on shutdown.
type Store struct {
	driver neo4j.DriverWithContext
	logger logrus.FieldLogger
}

// Open connects to uri (a bolt:// or neo4j:// URL) and verifies
// connectivity before returning, failing fast the same way the
// reference Bolt client wrapper in the example pack does.
func Open(ctx context.Context, uri, user, password string, logger logrus.FieldLogger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""),
		func(cfg *neo4jConfigurer) {})
	if err != nil {
		return nil, errors.Wrap(err, "create bolt driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, errors.Wrapf(err, "verify connectivity to %s", uri)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithField("uri", uri).Info("graphstore: connected")
	return &Store{driver: driver, logger: logger}, nil
}

// neo4jConfigurer is a type alias so Open's functional-option callback
// reads naturally without importing neo4j.Config at every call site.
type neo4jConfigurer = neo4j.Config

// Close releases the underlying driver's connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// run executes a single write query with retry on transient transport
// errors, mirroring the session-per-call pattern build_engine.py uses
// (driver.session() as s: s.run(...)) but adding the backoff the
// original relied on the driver's own retry policy for.
func (s *Store) run(ctx context.Context, cypher string, params map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	var lastErr error
	backoff := 100 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, cypher, params)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if !neo4j.IsRetryable(err) {
			return errors.Wrap(err, "graphstore write")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return errors.Wrap(lastErr, "graphstore write: exhausted retries")
}

// runRead executes a read query and returns every result record.
func (s *Store) runRead(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, errors.Wrap(err, "graphstore read")
	}
	return result.([]*neo4j.Record), nil
}
