package contexts

import (
	"reflect"
	"sync"

	"github.com/go-drift/hostkit/pkg/controller"
)

// Token names a context and fixes the type of its value. Tokens with the same
// name and type are interchangeable.
type Token[T any] struct {
	name string
}

// NewToken creates a token for the context called name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the context name.
func (t Token[T]) Name() string {
	return t.name
}

func (t Token[T]) String() string {
	return t.name
}

type aliasKey struct {
	name string
	typ  reflect.Type
}

var (
	providerAliasMu sync.Mutex
	providerAliases = make(map[aliasKey]controller.Alias)
)

// providerAlias keeps one provider per context and value type on each host.
// It is an opaque token, so no string alias chosen by user code collides
// with it.
func (t Token[T]) providerAlias() controller.Alias {
	key := aliasKey{name: t.name, typ: reflect.TypeFor[T]()}
	providerAliasMu.Lock()
	defer providerAliasMu.Unlock()
	a, ok := providerAliases[key]
	if !ok {
		a = controller.NewToken("context-provider:" + t.name)
		providerAliases[key] = a
	}
	return a
}
