package repository

import "testing"

func TestMemoryAuditRepository(t *testing.T) {
	t.Parallel()

	runAuditContract(t, func(t *testing.T) auditStore {
		return NewMemoryAuditRepository()
	})
}
