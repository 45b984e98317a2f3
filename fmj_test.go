package devtools

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFmjMissingFields(t *testing.T) {
	_, err := NewFmj("", "Example Mod", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "fabric.mod.json", fe.Manifest)
	assert.Equal(t, "namespace", fe.Field)
	assert.Contains(t, err.Error(), "version")
}

func TestFmjWithDoesNotAlias(t *testing.T) {
	base, err := NewFmj("examplemod", "Example Mod", "1.2.3")
	require.NoError(t, err)
	base = base.WithAuthors("a").WithDepend("loaderapi", ">=1.0")

	left := base.WithAuthors("left").WithDepend("other", "*")
	right := base.WithAuthors("right").WithDepend("loaderapi", ">=2.0")

	assert.Equal(t, []string{"a"}, base.Identity().Authors)
	assert.Equal(t, []string{"a", "left"}, left.Identity().Authors)
	assert.Equal(t, []string{"a", "right"}, right.Identity().Authors)

	assert.Equal(t, []Dependency{{ID: "loaderapi", Versions: []string{">=1.0"}}}, base.Depends())
	assert.Len(t, left.Depends(), 2)
	assert.Equal(t, []Dependency{{ID: "loaderapi", Versions: []string{">=2.0"}}}, right.Depends())
}

func TestFmjGettersReturnCopies(t *testing.T) {
	f, err := NewFmj("examplemod", "Example Mod", "1.2.3")
	require.NoError(t, err)
	f = f.WithAuthors("a").WithDepend("loaderapi", ">=1.0")

	id := f.Identity()
	id.Authors[0] = "changed"
	deps := f.Depends()
	deps[0].Versions[0] = "changed"

	assert.Equal(t, "a", f.Identity().Authors[0])
	assert.Equal(t, ">=1.0", f.Depends()[0].Versions[0])
}

func TestFmjEntrypointsKeepCategoryOrder(t *testing.T) {
	f, err := NewFmj("examplemod", "Example Mod", "1.2.3")
	require.NoError(t, err)
	f = f.WithEntrypoints("client", "a.Client").
		WithEntrypoints("main", "a.Main").
		WithEntrypoint("client", Entrypoint{Value: "a.Kotlin", Adapter: "kotlin"})

	require.Len(t, f.entrypoints, 2)
	assert.Equal(t, "client", f.entrypoints[0].category)
	assert.Equal(t, []Entrypoint{{Value: "a.Client"}, {Value: "a.Kotlin", Adapter: "kotlin"}}, f.entrypoints[0].entries)
	assert.Equal(t, "main", f.entrypoints[1].category)
}

func TestFmjModMenuIsUpdatedInPlace(t *testing.T) {
	f, err := NewFmj("examplemod", "Example Mod", "1.2.3")
	require.NoError(t, err)
	f = f.WithCustom("first", 1).
		WithModMenu(func(m ModMenu) ModMenu { return m.WithLink("modmenu.discord", "https://example.com/discord") }).
		WithCustom("last", true).
		WithModMenu(func(m ModMenu) ModMenu { return m.WithBadges("library") })

	require.Len(t, f.custom, 3)
	assert.Equal(t, "modmenu", f.custom[1].key)
	m := f.custom[1].value.(ModMenu)
	assert.Len(t, m.links, 1)
	assert.Equal(t, []string{"library"}, m.badges)
}

func TestContact(t *testing.T) {
	c := NewContact()
	assert.True(t, c.IsZero())

	c = c.WithHomepage("https://example.com").WithIssues("https://example.com/issues")
	assert.False(t, c.IsZero())
	assert.Equal(t, "https://example.com", c.Homepage())
	assert.Equal(t, "", c.Sources())
	assert.Equal(t, "https://example.com/issues", c.Issues())
}
