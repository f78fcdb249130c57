package persistence

import (
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/domain/inventory"
	"github.com/hazchem/backend/internal/domain/movement"
)

// Models lists every persisted entity, in dependency order
func Models() []any {
	return []any{
		&chemical.Chemical{},
		&identity.Person{},
		&identity.RegisterRecord{},
		&inventory.Inventory{},
		&movement.StorageRecord{},
		&movement.OutboundRecord{},
		&movement.UsageRecord{},
	}
}
