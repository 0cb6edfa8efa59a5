package enums

import "fmt"

// AttachmentKind names the five document slots a container item carries.
// Each kind maps 1:1 to a JSON column on container_items.
type AttachmentKind string

const (
	AttachmentKindPackingList       AttachmentKind = "packing_list"
	AttachmentKindCommercialInvoice AttachmentKind = "commercial_invoice"
	AttachmentKindPayment           AttachmentKind = "payment"
	AttachmentKindHBL               AttachmentKind = "hbl"
	AttachmentKindCertificates      AttachmentKind = "certificates"
)

var validAttachmentKinds = []AttachmentKind{
	AttachmentKindPackingList,
	AttachmentKindCommercialInvoice,
	AttachmentKindPayment,
	AttachmentKindHBL,
	AttachmentKindCertificates,
}

// AllAttachmentKinds returns the kinds in column order.
func AllAttachmentKinds() []AttachmentKind {
	kinds := make([]AttachmentKind, len(validAttachmentKinds))
	copy(kinds, validAttachmentKinds)
	return kinds
}

// IsValid reports whether the value matches the canonical attachment kind enum.
func (k AttachmentKind) IsValid() bool {
	for _, candidate := range validAttachmentKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseAttachmentKind converts the raw string to AttachmentKind.
func ParseAttachmentKind(value string) (AttachmentKind, error) {
	for _, candidate := range validAttachmentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attachment kind %q", value)
}
