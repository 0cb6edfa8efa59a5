package exchange

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cargodesk/cargodesk-backend/internal/items"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
)

// ImportMode selects what happens to rows already in the container.
type ImportMode string

const (
	// ImportModeReplace clears the container before importing. Importing the
	// same workbook twice yields the same row set.
	ImportModeReplace ImportMode = "replace"
	// ImportModeAdd appends the workbook's rows after the existing ones.
	ImportModeAdd ImportMode = "add"
)

// ParseImportMode resolves the query value; empty defaults to replace.
func ParseImportMode(raw string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ImportModeReplace:
		return ImportModeReplace, nil
	case ImportModeAdd:
		return ImportModeAdd, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "import mode must be replace or add")
}

// headerAliases maps normalized header text to the export column index.
// Workbooks from other tools use shorter titles; the canonical export
// headers resolve to themselves.
var headerAliases = map[string]int{
	"reference code": 0, "ref": 0, "reference": 0, "ref code": 0, "code": 0,
	"supplier": 1, "vendor": 1,
	"cbm": 2, "volume": 2,
	"cartons": 3, "ctns": 3, "carton": 3,
	"gross weight": 4, "weight": 4, "gw": 4,
	"product cost": 5, "goods cost": 5, "cost": 5,
	"freight cost": 6, "freight": 6,
	"awaiting": 7, "waiting on": 7,
	"production days": 8, "prod days": 8, "lead time": 8,
	"production ready": 9, "production ready date": 9, "ready date": 9,
	"status": 10,
	"client": 11, "customer": 11,
}

func normalizeHeader(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), " ")
}

// parseWorkbook reads the first sheet into creation drafts. Unmapped columns
// are ignored; missing columns leave their fields at the row defaults.
func parseWorkbook(data []byte) ([]items.CreateItemDTO, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is not a readable workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read workbook rows")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// column index in the sheet -> field index in the export layout
	mapping := map[int]int{}
	for col, title := range rows[0] {
		if field, ok := headerAliases[normalizeHeader(title)]; ok {
			mapping[col] = field
		}
	}
	if len(mapping) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no recognizable columns in header row")
	}

	var drafts []items.CreateItemDTO
	for _, row := range rows[1:] {
		fields := make([]string, len(exportHeaders))
		empty := true
		for col, raw := range row {
			field, ok := mapping[col]
			if !ok {
				continue
			}
			value := strings.TrimSpace(raw)
			fields[field] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		drafts = append(drafts, draftFromFields(fields))
	}
	return drafts, nil
}

func draftFromFields(fields []string) items.CreateItemDTO {
	return items.CreateItemDTO{
		ReferenceCode:   fields[0],
		Supplier:        fields[1],
		CBM:             items.CoerceDecimal(fields[2]),
		Cartons:         items.CoerceInt(fields[3]),
		GrossWeight:     items.CoerceDecimal(fields[4]),
		ProductCost:     items.CoerceDecimal(fields[5]),
		FreightCost:     items.CoerceDecimal(fields[6]),
		Awaiting:        splitAwaiting(fields[7]),
		ProductionDays:  items.CoerceInt(fields[8]),
		ProductionReady: fields[9],
		Status:          enums.ItemStatusOrDefault(fields[10]),
		Client:          fields[11],
	}
}

func splitAwaiting(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
