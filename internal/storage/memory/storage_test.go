package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/geoshooter/internal/dependencies/mocks"
	"github.com/mcoot/geoshooter/internal/model"
)

type StorageSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = New(s.clock)
	s.ctx = context.Background()
}

func ptr[T any](v T) *T {
	return &v
}

// Register tests

func (s *StorageSuite) TestRegisterCreatesFreshPlayer() {
	player, err := s.storage.RegisterPlayer(s.ctx, "alice", "conn-1")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("alice"), player.ID)
	s.Equal(model.ConnID("conn-1"), player.ConnID)
	s.Equal(100, player.Health)
	s.Equal(0, player.Score)
	s.Equal(0, player.Kills)
	s.False(player.IsEliminated)
	s.Nil(player.Position)
	s.Nil(player.Azimuth)
	s.Equal(s.clock.Now(), player.JoinedAt)
}

func (s *StorageSuite) TestRegisterSameIDOverwrites() {
	_, _ = s.storage.RegisterPlayer(s.ctx, "alice", "conn-1")
	_ = s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerUpdate{
		Position: &model.Coordinates{Lat: 1, Lon: 2},
		Health:   40,
	})

	_, err := s.storage.RegisterPlayer(s.ctx, "alice", "conn-2")
	s.Require().NoError(err)

	player, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.ConnID("conn-2"), player.ConnID)
	s.Equal(100, player.Health)
	s.Nil(player.Position)

	players, _ := s.storage.ListPlayers(s.ctx)
	s.Len(players, 1)
}

// Get tests

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGetReturnsCopy() {
	_, _ = s.storage.RegisterPlayer(s.ctx, "alice", "conn-1")

	player, _ := s.storage.GetPlayer(s.ctx, "alice")
	player.Health = 1

	again, _ := s.storage.GetPlayer(s.ctx, "alice")
	s.Equal(100, again.Health)
}

// Update tests

func (s *StorageSuite) TestUpdateSetsFields() {
	_, _ = s.storage.RegisterPlayer(s.ctx, "alice", "conn-1")
	s.clock.Advance(time.Second)

	err := s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerUpdate{
		Position: &model.Coordinates{Lat: 51.5, Lon: -0.12},
		Azimuth:  ptr(45.0),
		Health:   80,
	})
	s.Require().NoError(err)

	player, _ := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NotNil(player.Position)
	s.Equal(51.5, player.Position.Lat)
	s.Equal(-0.12, player.Position.Lon)
	s.Require().NotNil(player.Azimuth)
	s.Equal(45.0, *player.Azimuth)
	s.Equal(80, player.Health)
	s.Equal(s.clock.Now(), player.UpdatedAt)
}

func (s *StorageSuite) TestUpdateIsLastWriteWins() {
	_, _ = s.storage.RegisterPlayer(s.ctx, "alice", "conn-1")
	_ = s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerUpdate{
		Position: &model.Coordinates{Lat: 1, Lon: 1},
		Azimuth:  ptr(10.0),
		Health:   100,
	})

	// GPS fix lost
	_ = s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerUpdate{Health: 100})

	player, _ := s.storage.GetPlayer(s.ctx, "alice")
	s.Nil(player.Position)
	s.Nil(player.Azimuth)
}

func (s *StorageSuite) TestUpdateClampsHealth() {
	_, _ = s.storage.RegisterPlayer(s.ctx, "alice", "conn-1")

	_ = s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerUpdate{Health: 250})
	player, _ := s.storage.GetPlayer(s.ctx, "alice")
	s.Equal(100, player.Health)

	_ = s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerUpdate{Health: -5})
	player, _ = s.storage.GetPlayer(s.ctx, "alice")
	s.Equal(0, player.Health)
	s.True(player.IsEliminated)
}

func (s *StorageSuite) TestUpdateUnknownPlayerIsNoOp() {
	err := s.storage.UpdatePlayer(s.ctx, "ghost", model.PlayerUpdate{Health: 50})
	s.NoError(err)

	_, err = s.storage.GetPlayer(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Save tests

func (s *StorageSuite) TestSavePersistsChanges() {
	player, _ := s.storage.RegisterPlayer(s.ctx, "alice", "conn-1")
	player.Score = 100
	player.Kills = 1

	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	saved, _ := s.storage.GetPlayer(s.ctx, "alice")
	s.Equal(100, saved.Score)
	s.Equal(1, saved.Kills)
}

// Delete tests

func (s *StorageSuite) TestDeletePlayer() {
	_, _ = s.storage.RegisterPlayer(s.ctx, "alice", "conn-1")

	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "alice"))

	_, err := s.storage.GetPlayer(s.ctx, "alice")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeleteUnknownPlayerIsNoOp() {
	s.NoError(s.storage.DeletePlayer(s.ctx, "ghost"))
	s.NoError(s.storage.DeletePlayer(s.ctx, "ghost"))
}

// List tests

func (s *StorageSuite) TestListPlayersIsSnapshot() {
	_, _ = s.storage.RegisterPlayer(s.ctx, "bob", "conn-2")
	_, _ = s.storage.RegisterPlayer(s.ctx, "alice", "conn-1")

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(model.PlayerID("alice"), players[0].ID)
	s.Equal(model.PlayerID("bob"), players[1].ID)

	_ = s.storage.DeletePlayer(s.ctx, "alice")
	players[1].Health = 3

	s.Len(players, 2)
	bob, _ := s.storage.GetPlayer(s.ctx, "bob")
	s.Equal(100, bob.Health)
}
