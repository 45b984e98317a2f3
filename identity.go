package devtools

import "golang.org/x/exp/slices"

// Contact holds the optional project links of a manifest.
type Contact struct {
	homepage string
	sources  string
	issues   string
}

func NewContact() Contact {
	return Contact{}
}

func (c Contact) WithHomepage(homepage string) Contact {
	c.homepage = homepage
	return c
}

func (c Contact) WithSources(sources string) Contact {
	c.sources = sources
	return c
}

func (c Contact) WithIssues(issues string) Contact {
	c.issues = issues
	return c
}

func (c Contact) Homepage() string { return c.homepage }
func (c Contact) Sources() string { return c.sources }
func (c Contact) Issues() string { return c.issues }

func (c Contact) IsZero() bool {
	return c == Contact{}
}

// Identity is the descriptive shape every manifest format carries. It is
// the only part of an Fmj that a derivation reads.
type Identity struct {
	Namespace   string
	Name        string
	Version     string
	Description string
	Authors     []string
	Contact     Contact
	License     string
	Icon        string
}

func (id Identity) clone() Identity {
	id.Authors = slices.Clone(id.Authors)
	return id
}

func (id Identity) require(manifest string) error {
	return requireFields(manifest,
		[2]string{"namespace", id.Namespace},
		[2]string{"name", id.Name},
		[2]string{"version", id.Version},
	)
}
