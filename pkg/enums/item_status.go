package enums

import "fmt"

// ItemStatus describes the allowed values for the `status` column in
// container_items.
type ItemStatus string

const (
	ItemStatusReadyToShip      ItemStatus = "ready_to_ship"
	ItemStatusAwaitingSupplier ItemStatus = "awaiting_supplier"
	ItemStatusNeedPayment      ItemStatus = "need_payment"
	ItemStatusPending          ItemStatus = "pending"
)

var validItemStatuses = []ItemStatus{
	ItemStatusReadyToShip,
	ItemStatusAwaitingSupplier,
	ItemStatusNeedPayment,
	ItemStatusPending,
}

// IsValid reports whether the value matches the canonical item status enum.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts the raw string to ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}

// ItemStatusOrDefault maps unknown or empty values to pending. Spreadsheet
// imports and drafts use this instead of failing the row.
func ItemStatusOrDefault(value string) ItemStatus {
	if status, err := ParseItemStatus(value); err == nil {
		return status
	}
	return ItemStatusPending
}
