package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		held, required Permission
		want           bool
	}{
		{PermissionAdmin, PermissionUser, true},
		{PermissionUser, PermissionAdmin, false},
		{PermissionUser, PermissionUser, true},
		{PermissionAdmin, PermissionAdmin, true},
		{"ADMIN", PermissionUser, true},
		{"guest", PermissionUser, false},
		{"", PermissionAdmin, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.held)+">="+string(tt.required), func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.held, tt.required))
		})
	}
}

func TestRank_UnknownIsZero(t *testing.T) {
	assert.Equal(t, 0, Rank("superuser"))
	assert.Equal(t, 1, Rank(PermissionUser))
	assert.Equal(t, 2, Rank(PermissionAdmin))
}

func TestParseSyncStatus(t *testing.T) {
	st, err := ParseSyncStatus("synced")
	require.NoError(t, err)
	assert.Equal(t, SyncSynced, st)

	st, err = ParseSyncStatus("")
	require.NoError(t, err)
	assert.Equal(t, SyncPending, st)

	st, err = ParseSyncStatus(" CONFLICT ")
	require.NoError(t, err)
	assert.Equal(t, SyncConflict, st)

	_, err = ParseSyncStatus("DONE")
	require.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "42", Product{ProductID: 42}.Key())
	assert.Equal(t, "42/4006381333931", ProductBarcode{ProductID: 42, Barcode: "4006381333931"}.Key())
	assert.Equal(t, "42/1/2", ProductDescription{ProductID: 42, SiteID: 1, LanguageID: 2}.Key())
	assert.Equal(t, "ORD-1", Order{OrderNumber: "ORD-1"}.Key())
}

func TestCatalogClasses_Order(t *testing.T) {
	assert.Equal(t, []Class{ClassProducts, ClassBarcodes, ClassDescriptions}, CatalogClasses)
}
