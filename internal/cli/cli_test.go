package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/webblog/internal/auth"
	"github.com/yourusername/webblog/internal/blog"
	"github.com/yourusername/webblog/internal/config"
	"github.com/yourusername/webblog/internal/logging"
	"github.com/yourusername/webblog/internal/storage"
	"github.com/yourusername/webblog/internal/users"
)

type cliFixture struct {
	cfg    *config.Config
	stores *storage.Stores
}

func newCLIFixture() *cliFixture {
	return &cliFixture{
		cfg: config.Default(),
		stores: &storage.Stores{
			Users: users.NewMemoryRepository(),
			Blogs: blog.NewMemoryRepository(),
		},
	}
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(
		func() (*config.Config, error) { return f.cfg, nil },
		func(context.Context, *config.Config, logging.Logger) (*storage.Stores, error) { return f.stores, nil },
	)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDigestCommand(t *testing.T) {
	f := newCLIFixture()
	out, err := f.run(t, "digest", "--email", "someone@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Equal(t, "437db65ce092a53c1c2adaa3bb8166307bc6138a\n", out)

	_, err = f.run(t, "digest", "--email", "someone@example.com")
	assert.Error(t, err)
}

func TestUserCreateThenAuthenticateHash(t *testing.T) {
	f := newCLIFixture()
	out, err := f.run(t, "user", "create", "--email", "Admin@Example.com", "--name", "Admin", "--password", "secret", "--admin")
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	u, err := f.stores.Users.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.True(t, u.Admin)
	assert.True(t, auth.NewHasher(auth.SHA1).Verify(u.PasswordHash, u.ID, auth.ClientDigest("admin@example.com", "secret")))

	_, err = f.run(t, "user", "create", "--email", "admin@example.com", "--name", "Again", "--password", "x")
	assert.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestUserCreateValidation(t *testing.T) {
	f := newCLIFixture()
	_, err := f.run(t, "user", "create", "--email", "bad", "--name", "A", "--password", "x")
	assert.Error(t, err)
	_, err = f.run(t, "user", "create", "--email", "a@example.com", "--password", "x")
	assert.Error(t, err)

	f.cfg.PasswordHashAlgorithm = "md5"
	_, err = f.run(t, "user", "create", "--email", "a@example.com", "--name", "A", "--password", "x")
	assert.Error(t, err)
}

func TestUserPromoteDemote(t *testing.T) {
	f := newCLIFixture()
	_, err := f.run(t, "user", "create", "--email", "a@example.com", "--name", "A", "--password", "x")
	require.NoError(t, err)

	out, err := f.run(t, "user", "promote", "--email", "a@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "admin=true")

	found, err := f.stores.Users.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.True(t, found[0].Admin)

	out, err = f.run(t, "user", "demote", "--email", "a@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "admin=false")

	_, err = f.run(t, "user", "promote", "--email", "nobody@example.com")
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestUserList(t *testing.T) {
	f := newCLIFixture()
	f.cfg.PageSize = 2
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := f.run(t, "user", "create", "--email", email, "--name", "N", "--password", "x")
		require.NoError(t, err)
	}

	out, err := f.run(t, "user", "list", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "page 2/2 (3 users)")
	assert.NotContains(t, out, "passwd")
}

func TestMigrateRequiresDSN(t *testing.T) {
	f := newCLIFixture()
	_, err := f.run(t, "migrate")
	assert.Error(t, err)
}
