//go:build integration

package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"rfdist/internal/notify"
	programmodels "rfdist/internal/program/models"
	usermodels "rfdist/internal/user/models"
	id "rfdist/pkg/domain"
	"rfdist/pkg/testutil/containers"
)

type RedisDispatcherSuite struct {
	suite.Suite
	redis      *containers.RedisContainer
	dispatcher *notify.RedisDispatcher
}

func TestRedisDispatcherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisDispatcherSuite))
}

func (s *RedisDispatcherSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.dispatcher = notify.NewRedisDispatcher(s.redis.Client)
}

func (s *RedisDispatcherSuite) newFixtures(pushHandle string) (*usermodels.User, *programmodels.Program) {
	now := time.Now()
	user, err := usermodels.NewUser(id.UserID(uuid.New()), "u-"+uuid.NewString()[:8], "", pushHandle, now)
	s.Require().NoError(err)
	program, err := programmodels.NewProgram(
		id.ProgramID(uuid.New()), "lobby-door", "",
		[]byte(`{"sectors":[]}`), id.OperatorID(uuid.New()), now,
	)
	s.Require().NoError(err)
	return user, program
}

func (s *RedisDispatcherSuite) TestNotifyPublishesToUserChannel() {
	ctx := context.Background()
	user, program := s.newFixtures("handle-42")

	sub := s.redis.Client.Subscribe(ctx, notify.Channel("handle-42"))
	defer sub.Close()
	_, err := sub.Receive(ctx) // wait for subscription confirmation
	s.Require().NoError(err)

	s.Require().NoError(s.dispatcher.Notify(ctx, user, program))

	select {
	case msg := <-sub.Channel():
		var got notify.Message
		s.Require().NoError(json.Unmarshal([]byte(msg.Payload), &got))
		s.Equal("RF Access Programming", got.Title)
		s.Equal("You have a new access card ready to program", got.Body)
		s.Equal("program_available", got.Data["type"])
		s.Equal(program.ID.String(), got.Data["program_id"])
	case <-time.After(5 * time.Second):
		s.FailNow("no notification received")
	}
}

func (s *RedisDispatcherSuite) TestNotifyWithoutHandleIsNoop() {
	ctx := context.Background()
	user, program := s.newFixtures("")

	s.Require().NoError(s.dispatcher.Notify(ctx, user, program))
}
