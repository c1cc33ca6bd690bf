package integration

import (
	"github.com/arcaderelay/ggposrv/internal/auth"
)

// TestCreateAndAuthenticate exercises the real CreateUser/Authenticate
// round trip against a genuine Postgres instance: the digest and salt
// are only meaningful once they've actually survived a write and a
// read back out, which no unit test touching auth.Store alone can
// confirm.
func (s *IntegrationSuite) TestCreateAndAuthenticate() {
	const nick = "test_player_one"
	const password = "correct horse battery staple"

	err := s.store.CreateUser(s.ctx, nick, password)
	s.Require().NoError(err)

	ok, err := s.store.Authenticate(s.ctx, nick, password)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.Authenticate(s.ctx, nick, "wrong password")
	s.Require().NoError(err)
	s.False(ok)
}

// TestCreateUser_DuplicateRejected confirms the unique-username
// constraint surfaces as auth.ErrUserExists rather than a raw pgx
// error.
func (s *IntegrationSuite) TestCreateUser_DuplicateRejected() {
	const nick = "test_player_two"

	s.Require().NoError(s.store.CreateUser(s.ctx, nick, "first-password"))

	err := s.store.CreateUser(s.ctx, nick, "second-password")
	s.ErrorIs(err, auth.ErrUserExists)
}

// TestAuthenticate_UnknownUser confirms an unknown login fails cleanly
// as ok=false, not as an error: the auth handler must not distinguish
// "no such user" from "wrong password" in its reply.
func (s *IntegrationSuite) TestAuthenticate_UnknownUser() {
	ok, err := s.store.Authenticate(s.ctx, "test_nobody", "whatever")
	s.Require().NoError(err)
	s.False(ok)
}
