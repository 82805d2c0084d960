package groupsort

import (
	"math"
	"strconv"
	"strings"

	"sheet-sync/internal/constants"
	"sheet-sync/internal/storage"
)

// GroupInfo - принадлежность артикула по листу "Главная"
type GroupInfo struct {
	IDG   string
	IDL   string
	Group string
	Line  string
}

// PriceInfo - принадлежность артикула по листу "Прайс"
type PriceInfo struct {
	IDL       string
	GroupLine string
	LinePrice string
}

type LineInfo struct {
	GroupLine string
	LinePrice string
}

// GroupMaps строятся один раз на запуск группировки
type GroupMaps struct {
	IDToGroup map[string]GroupInfo
	IDToPrice map[string]PriceInfo
	IDLToLine map[int]LineInfo
}

// BuildGroupMaps собирает справочники из опорных листов. nil-снимок - лист не найден.
// Прайс читается только для группировки по ценовым линиям.
func BuildGroupMaps(primary, price *storage.Snapshot, mode Mode) GroupMaps {
	maps := GroupMaps{
		IDToGroup: make(map[string]GroupInfo),
		IDToPrice: make(map[string]PriceInfo),
		IDLToLine: make(map[int]LineInfo),
	}

	if primary != nil {
		if _, ok := primary.Index(constants.FieldID); ok {
			for i := range primary.Rows {
				row := primary.Row(i)
				id := cell(row, constants.FieldID)
				if row.Empty() || id == "" {
					continue
				}
				maps.IDToGroup[id] = GroupInfo{
					IDG:   raw(row, constants.FieldIDG),
					IDL:   raw(row, constants.FieldIDL),
					Group: raw(row, constants.FieldGroup),
					Line:  raw(row, constants.FieldLine),
				}
			}
		}
	}

	if mode != ByPrice || price == nil {
		return maps
	}

	_, hasID := price.Index(constants.FieldID)
	_, hasIDL := price.Index(constants.FieldIDL)
	if !hasID || !hasIDL {
		return maps
	}

	for i := range price.Rows {
		row := price.Row(i)
		id := cell(row, constants.FieldID)
		if row.Empty() || id == "" {
			continue
		}

		info := PriceInfo{
			IDL:       raw(row, constants.FieldIDL),
			GroupLine: cell(row, constants.FieldGroupLine),
			LinePrice: cell(row, constants.FieldLinePrice),
		}
		maps.IDToPrice[id] = info

		// первая строка линии задает ее подписи
		if n, ok := parseNumber(info.IDL); ok {
			idl := int(n)
			if _, seen := maps.IDLToLine[idl]; !seen {
				maps.IDLToLine[idl] = LineInfo{GroupLine: info.GroupLine, LinePrice: info.LinePrice}
			}
		}
	}

	return maps
}

func raw(row storage.RowView, field string) string {
	v, _ := row.Get(field)
	return v
}

func cell(row storage.RowView, field string) string {
	return strings.TrimSpace(raw(row, field))
}

// parseNumber - число в ячейке; пустые, NaN и бесконечности числом не считаются
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
