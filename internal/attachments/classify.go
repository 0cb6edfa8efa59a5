package attachments

import (
	"path"
	"strings"

	"github.com/cargodesk/cargodesk-backend/pkg/enums"
)

// mimeClasses keys the preview classification on declared content type.
var mimeClasses = map[string]enums.DocClass{
	"application/pdf": enums.DocClassPDF,

	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": enums.DocClassSpreadsheet,
	"application/vnd.ms-excel": enums.DocClassSpreadsheet,
	"text/csv":                 enums.DocClassSpreadsheet,

	"application/msword": enums.DocClassWord,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": enums.DocClassWord,
}

var extensionClasses = map[string]enums.DocClass{
	".pdf":  enums.DocClassPDF,
	".xlsx": enums.DocClassSpreadsheet,
	".xls":  enums.DocClassSpreadsheet,
	".csv":  enums.DocClassSpreadsheet,
	".doc":  enums.DocClassWord,
	".docx": enums.DocClassWord,
	".png":  enums.DocClassImage,
	".jpg":  enums.DocClassImage,
	".jpeg": enums.DocClassImage,
	".gif":  enums.DocClassImage,
	".webp": enums.DocClassImage,
}

// mimeExtensions supplies a file extension for bundle entries whose stored
// name has none.
var mimeExtensions = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
	"application/vnd.ms-excel": ".xls",
	"text/csv":                 ".csv",
	"application/msword":       ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Classify maps an attachment to its preview class. The declared MIME type
// wins; the filename extension is the fallback, and anything unrecognized is
// DocClassOther.
func Classify(mimeType, filename string) enums.DocClass {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if class, ok := mimeClasses[mt]; ok {
		return class
	}
	if strings.HasPrefix(mt, "image/") {
		return enums.DocClassImage
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	if class, ok := extensionClasses[ext]; ok {
		return class
	}
	return enums.DocClassOther
}

// ExtensionForMime returns a file extension for the content type, or "" when
// none is known.
func ExtensionForMime(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mimeExtensions[mt]
}
