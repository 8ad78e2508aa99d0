// Package models defines the entities mirrored from the authoritative
// catalog into the local store, their synchronization state, and the
// permission ranking shared by the agent and the backend.
package models

import (
	"fmt"
	"strings"
)

// SyncStatus is the per-record synchronization state kept in the local store.
// A record holds exactly one status at a time.
type SyncStatus string

const (
	SyncPending  SyncStatus = "PENDING"
	SyncSyncing  SyncStatus = "SYNCING"
	SyncSynced   SyncStatus = "SYNCED"
	SyncFailed   SyncStatus = "FAILED"
	SyncConflict SyncStatus = "CONFLICT"
)

// AllSyncStatuses lists every status in declaration order.
var AllSyncStatuses = []SyncStatus{SyncPending, SyncSyncing, SyncSynced, SyncFailed, SyncConflict}

func (s SyncStatus) Valid() bool {
	for _, v := range AllSyncStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseSyncStatus accepts any case. Empty input maps to PENDING, which is
// the status a fresh local record starts in.
func ParseSyncStatus(s string) (SyncStatus, error) {
	if s == "" {
		return SyncPending, nil
	}
	st := SyncStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown sync status %q", s)
	}
	return st, nil
}

// Class names a syncable record collection.
type Class string

const (
	ClassProducts     Class = "products"
	ClassBarcodes     Class = "barcodes"
	ClassDescriptions Class = "descriptions"
	ClassOrders       Class = "orders"
)

// CatalogClasses is the fixed order the sync engine pulls collections in.
var CatalogClasses = []Class{ClassProducts, ClassBarcodes, ClassDescriptions}
