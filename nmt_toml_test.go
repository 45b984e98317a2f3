package devtools

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveExample(t *testing.T) {
	nmt := Derive(exampleFmj(t), NmtFromIdentity).WithLoaderVersion("[2,)")

	out, err := EncodeNmt(nmt)
	require.NoError(t, err)

	expected := `modLoader = "javafml"
loaderVersion = "[2,)"

[[mods]]
	modId = "examplemod"
	version = "1.2.3"
	displayName = "Example Mod"
`
	assert.Equal(t, expected, string(out))

	var doc struct {
		LoaderVersion string `toml:"loaderVersion"`
		Mods          []struct {
			ModID   string `toml:"modId"`
			Version string `toml:"version"`
		} `toml:"mods"`
	}
	require.NoError(t, toml.Unmarshal(out, &doc))
	assert.Equal(t, "[2,)", doc.LoaderVersion)
	require.Len(t, doc.Mods, 1)
	assert.Equal(t, "examplemod", doc.Mods[0].ModID)
	assert.Equal(t, "1.2.3", doc.Mods[0].Version)
}

func TestDeriveCopiesIdentityOnly(t *testing.T) {
	f := exampleFmj(t).
		WithDescription("desc").
		WithAuthors("LambdAurora").
		WithLicense("MIT").
		WithIcon("icon.png").
		WithContact(func(c Contact) Contact { return c.WithIssues("https://example.com/issues") }).
		WithEntrypoints("main", "com.example.Main").
		WithMixins("examplemod.mixins.json")

	nmt := Derive(f, NmtFromIdentity)

	assert.Equal(t, f.Identity(), nmt.Identity())
	assert.Empty(t, nmt.Depends())
	assert.Empty(t, nmt.LoaderVersion())

	// the derived value must not share the authors slice
	id := nmt.WithAuthors("other").Identity()
	assert.Equal(t, []string{"LambdAurora", "other"}, id.Authors)
	assert.Equal(t, []string{"LambdAurora"}, f.Identity().Authors)
}

func TestDeriveLeavesMissingFieldsMissing(t *testing.T) {
	out, err := EncodeNmt(Derive(exampleFmj(t), NmtFromIdentity))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, toml.Unmarshal(out, &doc))
	assert.NotContains(t, doc, "loaderVersion")
	assert.NotContains(t, doc, "license")
	assert.NotContains(t, doc, "modproperties")
	assert.NotContains(t, doc, "dependencies")
}

func TestEncodeNmtFull(t *testing.T) {
	f := exampleFmj(t).
		WithDescription("Adds dynamic lights.").
		WithAuthors("LambdAurora", "Someone").
		WithLicense("Lambda License").
		WithIcon("assets/lambdynlights/icon.png").
		WithContact(func(c Contact) Contact {
			return c.WithHomepage("https://modrinth.com/mod/lambdynamiclights").
				WithIssues("https://github.com/LambdAurora/LambDynamicLights/issues")
		})
	nmt := Derive(f, NmtFromIdentity).
		WithLoaderVersion("[2,)").
		WithDepend("minecraft", "[1.21.3,)").
		WithDependency(NmtDependency{ModID: "sodium", Type: DependencyOptional, VersionRange: "*", Ordering: OrderingAfter, Side: SideClient}).
		WithProperty("catalogueBackground", "assets/bg.png")

	out, err := EncodeNmt(nmt)
	require.NoError(t, err)

	expected := `modLoader = "javafml"
loaderVersion = "[2,)"
license = "Lambda License"
issueTrackerURL = "https://github.com/LambdAurora/LambDynamicLights/issues"

[[mods]]
	modId = "examplemod"
	version = "1.2.3"
	displayName = "Example Mod"
	description = "Adds dynamic lights."
	authors = "LambdAurora, Someone"
	logoFile = "assets/lambdynlights/icon.png"
	logoBlur = false
	displayURL = "https://modrinth.com/mod/lambdynamiclights"
	issueTrackerURL = "https://github.com/LambdAurora/LambDynamicLights/issues"

[[dependencies.examplemod]]
	modId = "minecraft"
	type = "required"
	versionRange = "[1.21.3,)"
	ordering = "NONE"
	side = "BOTH"

[[dependencies.examplemod]]
	modId = "sodium"
	type = "optional"
	versionRange = "*"
	ordering = "AFTER"
	side = "CLIENT"

[modproperties.examplemod]
	catalogueImageIcon = "assets/lambdynlights/icon.png"
	catalogueBackground = "assets/bg.png"
`
	assert.Equal(t, expected, string(out))
}

func TestEncodeNmtEscaping(t *testing.T) {
	n, err := NewNmt("my.mod", "Quote \"Mod\"", "1.0")
	require.NoError(t, err)
	n = n.WithDescription("line one\nline two\t\\ end\x01").
		WithProperty("weird key", "v")

	out, err := EncodeNmt(n)
	require.NoError(t, err)
	assert.Contains(t, string(out), `[modproperties."my.mod"]`)
	assert.Contains(t, string(out), `"weird key" = "v"`)

	var doc struct {
		Mods []struct {
			ModID       string `toml:"modId"`
			DisplayName string `toml:"displayName"`
			Description string `toml:"description"`
		} `toml:"mods"`
		ModProperties map[string]map[string]string `toml:"modproperties"`
	}
	require.NoError(t, toml.Unmarshal(out, &doc))
	require.Len(t, doc.Mods, 1)
	assert.Equal(t, "my.mod", doc.Mods[0].ModID)
	assert.Equal(t, "Quote \"Mod\"", doc.Mods[0].DisplayName)
	assert.Equal(t, "line one\nline two\t\\ end\x01", doc.Mods[0].Description)
	assert.Equal(t, "v", doc.ModProperties["my.mod"]["weird key"])
}

func TestNmtWithDependencyDefaultsAndReplace(t *testing.T) {
	n, err := NewNmt("examplemod", "Example Mod", "1.2.3")
	require.NoError(t, err)
	n = n.WithDepend("minecraft", "[1.21,)").WithDepend("neoforge", "[21,)")
	replaced := n.WithDependency(NmtDependency{ModID: "minecraft", VersionRange: "[1.21.3,)", Side: SideClient})

	assert.Equal(t, []NmtDependency{
		{ModID: "minecraft", Type: DependencyRequired, VersionRange: "[1.21,)", Ordering: OrderingNone, Side: SideBoth},
		{ModID: "neoforge", Type: DependencyRequired, VersionRange: "[21,)", Ordering: OrderingNone, Side: SideBoth},
	}, n.Depends())
	assert.Equal(t, "[1.21.3,)", replaced.Depends()[0].VersionRange)
	assert.Equal(t, SideClient, replaced.Depends()[0].Side)
	assert.Equal(t, "neoforge", replaced.Depends()[1].ModID)
}

func TestNewNmtMissingFields(t *testing.T) {
	_, err := NewNmt("examplemod", "", "1.0")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestTomlKey(t *testing.T) {
	assert.Equal(t, "modId", tomlKey("modId"))
	assert.Equal(t, "a_b-c", tomlKey("a_b-c"))
	assert.Equal(t, `"a.b"`, tomlKey("a.b"))
	assert.Equal(t, `""`, tomlKey(""))
}
