package tokenfakerepo

import (
	"sync"

	"github.com/jrsteele09/go-sales-client/token"
)

var _ token.KV = (*FakeKV)(nil)

// FakeKV is an in-memory KV. Values live as long as the process.
type FakeKV struct {
	values map[string]string
	lock   sync.RWMutex

	// FailOn makes operations on the named key return the given error
	FailOn map[string]error
}

func NewFakeKV() *FakeKV {
	return &FakeKV{
		values: make(map[string]string),
		FailOn: make(map[string]error),
	}
}

func (kv *FakeKV) Get(key string) (string, bool, error) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()

	if err := kv.FailOn[key]; err != nil {
		return "", false, err
	}
	v, ok := kv.values[key]
	return v, ok, nil
}

func (kv *FakeKV) Set(key, value string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	if err := kv.FailOn[key]; err != nil {
		return err
	}
	kv.values[key] = value
	return nil
}

func (kv *FakeKV) Delete(key string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()

	if err := kv.FailOn[key]; err != nil {
		return err
	}
	delete(kv.values, key)
	return nil
}

// Len returns the number of stored keys
func (kv *FakeKV) Len() int {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	return len(kv.values)
}
