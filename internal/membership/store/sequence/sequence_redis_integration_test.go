//go:build integration

package sequence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dr-roshyara/public-digit-sub005/internal/membership/store/sequence"
	"github.com/dr-roshyara/public-digit-sub005/pkg/testutil/containers"
)

type RedisSequenceSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	seq   *sequence.RedisSequence
}

func TestRedisSequenceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSequenceSuite))
}

func (s *RedisSequenceSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.seq = sequence.NewRedis(s.redis.Client)
}

func (s *RedisSequenceSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSequenceSuite) TestIncrementsPerTenant() {
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		n, err := s.seq.Next(ctx, "T1", 2026)
		s.Require().NoError(err)
		s.Equal(want, n)
	}
	n, err := s.seq.Next(ctx, "T2", 2026)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	raw, err := s.redis.Client.Get(ctx, sequence.Key("T1", 2026)).Int64()
	s.Require().NoError(err)
	s.Equal(int64(3), raw)
}

func (s *RedisSequenceSuite) TestAdvanceAfterFlush() {
	ctx := context.Background()
	s.Require().NoError(s.seq.Advance(ctx, "T1", 2026, 40))
	n, err := s.seq.Next(ctx, "T1", 2026)
	s.Require().NoError(err)
	s.Equal(int64(41), n)

	s.Require().NoError(s.seq.Advance(ctx, "T1", 2026, 7))
	n, err = s.seq.Next(ctx, "T1", 2026)
	s.Require().NoError(err)
	s.Equal(int64(42), n)
}
