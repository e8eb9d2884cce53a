package controller

// Alias identifies a controller within its host. Two controllers on the same
// host with equal, defined aliases are mutually exclusive: adding the second
// destroys the first.
//
// The zero value is the absent alias, which never triggers replacement.
// Aliases are comparable and may be used as map keys.
type Alias struct {
	name  string
	token *aliasToken
}

type aliasToken struct {
	desc string
}

// NoAlias returns the absent alias.
func NoAlias() Alias {
	return Alias{}
}

// Named returns a string alias. The empty string yields the absent alias.
func Named(name string) Alias {
	return Alias{name: name}
}

// NewToken returns an opaque alias that only equals itself. The description
// is used for diagnostics; two tokens with the same description are distinct.
func NewToken(desc string) Alias {
	return Alias{token: &aliasToken{desc: desc}}
}

// IsDefined reports whether the alias participates in replacement.
func (a Alias) IsDefined() bool {
	return a.name != "" || a.token != nil
}

// IsToken reports whether the alias was created by NewToken.
func (a Alias) IsToken() bool {
	return a.token != nil
}

// Equal reports whether a and b are both defined and identical.
func (a Alias) Equal(b Alias) bool {
	return a.IsDefined() && a == b
}

func (a Alias) String() string {
	switch {
	case a.token != nil:
		return "token(" + a.token.desc + ")"
	default:
		return a.name
	}
}
