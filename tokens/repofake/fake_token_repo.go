package repofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-course-client/tokens"
)

var _ tokens.Repo = (*FakeTokenRepo)(nil)

// FakeTokenRepo keeps the encoded record in memory, so it exercises the same
// codec as the durable repos.
type FakeTokenRepo struct {
	records map[string][]byte
	lock    sync.RWMutex
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		records: make(map[string][]byte),
	}
}

func (r *FakeTokenRepo) Get(_ context.Context) (tokens.Pair, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	data, ok := r.records[tokens.StorageKey]
	if !ok {
		return tokens.Pair{}, nil
	}
	return tokens.DecodeRecord(data)
}

func (r *FakeTokenRepo) Set(_ context.Context, pair tokens.Pair) error {
	data, err := tokens.EncodeRecord(pair)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.records[tokens.StorageKey] = data
	return nil
}

func (r *FakeTokenRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.records, tokens.StorageKey)
	return nil
}

// Raw returns the stored record for assertions.
func (r *FakeTokenRepo) Raw() ([]byte, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	data, ok := r.records[tokens.StorageKey]
	return data, ok
}
