package memory

import (
	"testing"

	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

func TestFactStore(t *testing.T) {
	storetest.FactStoreSuite(t, func(*testing.T) driven.FactStore {
		return NewFactStore()
	})
}
