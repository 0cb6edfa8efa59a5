package enums

// DocClass is the closed set of preview renderings for an attachment:
// embed PDFs, render images inline, offer downloads for office documents,
// and a generic link otherwise.
type DocClass string

const (
	DocClassPDF         DocClass = "pdf"
	DocClassSpreadsheet DocClass = "spreadsheet"
	DocClassWord        DocClass = "word"
	DocClassImage       DocClass = "image"
	DocClassOther       DocClass = "other"
)

var validDocClasses = []DocClass{
	DocClassPDF,
	DocClassSpreadsheet,
	DocClassWord,
	DocClassImage,
	DocClassOther,
}

// IsValid reports whether the value matches the canonical doc class enum.
func (d DocClass) IsValid() bool {
	for _, candidate := range validDocClasses {
		if candidate == d {
			return true
		}
	}
	return false
}
