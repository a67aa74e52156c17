package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/tastybytes/backend/config"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/store"
	"github.com/pageza/tastybytes/backend/internal/testhelpers"
)

type harness struct {
	t      *testing.T
	env    *env
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		t: t,
		env: &env{
			loadConfig: func() (*config.Config, error) {
				cfg := config.Defaults()
				cfg.Environment = config.Test
				cfg.JWTSecret = "test-secret"
				return cfg, nil
			},
			openStore: store.NewStoreFromConfig,
			clock:     testhelpers.FixedClock(),
			ids:       testhelpers.NewSequenceIDs("id"),
		},
		dbPath: filepath.Join(t.TempDir(), "tastybytes.db"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	h.env.out = &out
	cmd := newRootCmd(h.env)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--db", h.dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "tastybytes %v", args)
	return out
}

func TestListSeededRecipes(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("recipes", "list")
	assert.Contains(t, out, "Vegetable Stir Fry")
	assert.Contains(t, out, "Grilled Chicken Breast")
	assert.Contains(t, out, "Mushroom Risotto")

	out = h.mustRun("recipes", "list", "--vegetarian")
	assert.Contains(t, out, "Vegetable Stir Fry")
	assert.NotContains(t, out, "Grilled Chicken Breast")

	out = h.mustRun("recipes", "list", "--non-vegetarian")
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("\n")), out)
	assert.Contains(t, out, "Grilled Chicken Breast")

	out = h.mustRun("recipes", "list", "--search", "jane")
	assert.Contains(t, out, "Mushroom Risotto")
	assert.NotContains(t, out, "Vegetable Stir Fry")

	out = h.mustRun("recipes", "list", "--search", "nothing like this")
	assert.Equal(t, "No recipes found.\n", out)

	_, err := h.run("recipes", "list", "--vegetarian", "--non-vegetarian")
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "Not signed in\n", h.mustRun("whoami"))

	out := h.mustRun("register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")
	assert.Equal(t, "Welcome, Ana!\n", out)

	// The session survives between invocations
	assert.Equal(t, "Ana <ana@example.com>\n", h.mustRun("whoami"))

	assert.Equal(t, "Signed out\n", h.mustRun("logout"))
	assert.Equal(t, "Not signed in\n", h.mustRun("whoami"))
	assert.Equal(t, "Signed out\n", h.mustRun("logout"))

	_, err := h.run("login", "--email", "ana@example.com", "--password", "wrong-password")
	assert.EqualError(t, err, "incorrect email or password")

	out = h.mustRun("login", "--email", "ANA@example.com", "--password", "secret1")
	assert.Equal(t, "Signed in as Ana\n", out)

	_, err = h.run("login")
	assert.Error(t, err)

	_, err = h.run("login", "--google-token", "token")
	assert.EqualError(t, err, "Google sign-in is not available")
}

func TestRecipeCommands(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("recipes", "add", "--title", "Tacos")
	assert.EqualError(t, err, "please sign in first (tastybytes login)")

	h.mustRun("register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")

	_, err = h.run("recipes", "add", "--title", "Tacos")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("description"))

	out := h.mustRun("recipes", "add",
		"--title", "Tacos",
		"--description", "Weeknight tacos",
		"--ingredient", "tortillas", "--ingredient", "  ", "--ingredient", "beans",
		"--instruction", "Warm tortillas",
		"--prep", "10", "--cook", "5", "--servings", "2", "--vegetarian")
	// id-1 is Ana's account
	assert.Equal(t, "Added \"Tacos\" (id-2)\n", out)

	out = h.mustRun("recipes", "show", "id-2")
	assert.Contains(t, out, "Tacos\nBy Ana, 3/1/2024\nVegetarian\n")
	assert.Contains(t, out, "  • tortillas\n  • beans\n")
	assert.Contains(t, out, "  1. Warm tortillas\n")
	assert.Contains(t, out, "total 15 min, serves 2")

	out = h.mustRun("recipes", "edit", "id-2", "--title", "Bean Tacos", "--servings", "4")
	assert.Equal(t, "Updated \"Bean Tacos\"\n", out)
	out = h.mustRun("recipes", "show", "id-2")
	assert.Contains(t, out, "serves 4")
	assert.Contains(t, out, "Vegetarian\n")

	_, err = h.run("recipes", "delete", "1")
	assert.EqualError(t, err, "you can only change your own recipes")

	_, err = h.run("recipes", "show", "missing")
	assert.EqualError(t, err, "recipe not found")

	assert.Equal(t, "Recipe deleted\n", h.mustRun("recipes", "delete", "id-2"))
	_, err = h.run("recipes", "show", "id-2")
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	out := h.mustRun("recipes", "export", "3", "--out", dir)
	path := filepath.Join(dir, "mushroom-risotto.pdf")
	assert.Equal(t, "Saved "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExportKeepsFileInsideOutDir(t *testing.T) {
	h := newHarness(t)
	h.mustRun("register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")
	h.mustRun("recipes", "add",
		"--title", "../escaped",
		"--description", "Crème fraîche on toast",
		"--ingredient", "crème fraîche",
		"--instruction", "Spread",
		"--prep", "1", "--cook", "1", "--servings", "1")

	parent := t.TempDir()
	dir := filepath.Join(parent, "out")
	require.NoError(t, os.Mkdir(dir, 0o755))

	out := h.mustRun("recipes", "export", "id-2", "--out", dir)
	assert.Equal(t, "Saved "+filepath.Join(dir, "..-escaped.pdf")+"\n", out)

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out", entries[0].Name())
}
