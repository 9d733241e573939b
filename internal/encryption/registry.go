package encryption

import (
	"sort"
	"sync"

	"github.com/textcipher-go/internal/errors"
)

// CipherFactory creates a new cipher instance
type CipherFactory func(key Key) (Cipher, error)

// registry holds registered cipher factories
var (
	registryMu sync.RWMutex
	registry   = make(map[Method]CipherFactory)
)

func init() {
	Register(MethodRotation, func(key Key) (Cipher, error) {
		return NewRotationCipher(key.Shift), nil
	})
	Register(MethodXOR, func(key Key) (Cipher, error) {
		return NewXORCipher(key.Bytes)
	})
}

// Register adds a cipher factory to the registry
func Register(method Method, factory CipherFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[method] = factory
}

// NewCipher creates a cipher using the registry
func NewCipher(method Method, key Key) (Cipher, error) {
	registryMu.RLock()
	factory, ok := registry[method]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.NewUnknownMethod(method.String())
	}

	return factory(key)
}

// ListRegistered returns all registered methods in order
func ListRegistered() []Method {
	registryMu.RLock()
	defer registryMu.RUnlock()

	methods := make([]Method, 0, len(registry))
	for m := range registry {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}
