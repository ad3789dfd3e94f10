package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"zyan/auth"
	"zyan/errors"
	"zyan/mocks"
	"zyan/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAddUser(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIUserRepository(ctrl)
	var out bytes.Buffer

	repo.EXPECT().
		CreateUser("alice@example.com", gomock.Any(), []string{"admin", "user"}).
		DoAndReturn(func(_ string, hash string, _ []string) (string, error) {
			ok, err := auth.ComparePassword("ComplexPass123!", hash)
			req.NoError(err)
			req.True(ok)
			return "0b7c4a2e-1111-2222-3333-444455556666", nil
		}).
		Times(1)

	code, err := addUser(repo, []string{"-email", "alice@example.com", "-password", "ComplexPass123!", "-roles", "admin, user,"}, &out)

	req.NoError(err)
	req.Equal(exitOK, code)
	req.Contains(out.String(), "alice@example.com")
}

func TestAddUser_Weak_Password(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIUserRepository(ctrl)

	code, err := addUser(repo, []string{"-email", "alice@example.com", "-password", "weak"}, &bytes.Buffer{})

	req.Error(err)
	req.Equal(exitConfig, code)
}

func TestListUsers(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIUserRepository(ctrl)
	var out bytes.Buffer

	repo.EXPECT().ListUsers().Return([]repositories.User{
		{ID: "0b7c4a2e-aaaa", Email: "alice@example.com", Roles: []string{"admin"}, CreatedAt: time.Now()},
		{ID: "9f00aa11-bbbb", Email: "bob@example.com", Roles: []string{"user"}, CreatedAt: time.Now()},
	}, nil).Times(1)

	code, err := listUsers(repo, &out)

	req.NoError(err)
	req.Equal(exitOK, code)
	req.Contains(out.String(), "alice@example.com")
	req.Contains(out.String(), "0b7c4a2e")
	req.NotContains(out.String(), "0b7c4a2e-aaaa")
}

func TestIssueToken(t *testing.T) {
	req := require.New(t)
	config := Config{JWTSecret: "secret-for-tests", AuthTokenDuration: time.Hour}
	var out bytes.Buffer

	code, err := issueToken(config, []string{"-user", "carol", "-roles", "ops"}, &out)
	req.NoError(err)
	req.Equal(exitOK, code)

	claims, err := auth.NewTokenIssuer("secret-for-tests", time.Hour).ValidateToken(strings.TrimSpace(out.String()))
	req.NoError(err)
	req.Equal("carol", claims.UserID)
	req.Equal([]string{"ops"}, claims.Roles)

	_, err = issueToken(Config{}, []string{"-user", "carol"}, &bytes.Buffer{})
	req.Error(err)
}

func TestRun_Unknown_Command(t *testing.T) {
	req := require.New(t)

	code, err := run([]string{"reboot"}, &bytes.Buffer{})

	req.Error(err)
	req.NotErrorIs(err, errors.ErrInvalidArgument)
	req.Equal(exitConfig, code)
}
