package localstore

import (
	"encoding/json"

	"github.com/Cherval/me-my-cal/internal/core"
)

// StorageKey is the single fixed key holding the demo transaction list.
const StorageKey = "me-my-cal-demo-transactions"

// Adapter reads and writes the demo transaction list. It is the complete
// source of truth in demo mode; there is no server reconciliation.
type Adapter struct {
	kv  *KV
	key string
}

func NewAdapter(kv *KV) *Adapter {
	return &Adapter{kv: kv, key: StorageKey}
}

// Load returns the stored list. It never fails: a missing key, a parse
// error or a stored value that is not a list all yield an empty list.
func (a *Adapter) Load() []core.Transaction {
	raw, ok := a.kv.Get(a.key)
	if !ok {
		return []core.Transaction{}
	}
	var list []core.Transaction
	if err := json.Unmarshal(raw, &list); err != nil {
		return []core.Transaction{}
	}
	if list == nil {
		return []core.Transaction{}
	}
	return list
}

// Save serializes the full list and overwrites the stored value.
func (a *Adapter) Save(list []core.Transaction) error {
	if list == nil {
		list = []core.Transaction{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return a.kv.Set(a.key, data)
}
