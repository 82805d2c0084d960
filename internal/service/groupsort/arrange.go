package groupsort

import (
	"fmt"
	"sort"
	"strings"

	"sheet-sync/internal/constants"
	"sheet-sync/internal/header"
	"sheet-sync/internal/storage"
)

type RowEntry struct {
	Values   []string
	HasIDP   bool
	IDP      float64
	DSName   string
	Position int
}

type Group struct {
	Key       string
	Title     string
	HasSort   bool
	SortValue float64
	Rows      []RowEntry
}

// Arrangement - сгруппированный и упорядоченный лист, готовый к записи
type Arrangement struct {
	Groups   []*Group
	TitleCol int
	Width    int
}

func (a *Arrangement) RowCount() int {
	n := 0
	for _, g := range a.Groups {
		n += len(g.Rows)
	}
	return n
}

// Arrange раскладывает строки листа по группам. Строки без артикула выпадают.
func Arrange(snap *storage.Snapshot, maps GroupMaps, mode Mode) (*Arrangement, error) {
	const op = "service.groupsort.Arrange"

	idCol, ok := snap.Index(constants.FieldID)
	if !ok {
		return nil, fmt.Errorf("%s: column '%s': %w", op, constants.FieldID, storage.ErrHeaderNotFound)
	}
	idpCol, hasIDP := snap.Index(constants.FieldIDP)
	dsCol, hasDS := header.Resolve(snap.Headers, constants.FieldDSName)
	titleCol, ok := header.Resolve(snap.Headers, constants.FieldTitle)
	if !ok {
		titleCol = 0
	}

	byKey := make(map[string]*Group)
	var groups []*Group

	for i := range snap.Rows {
		row := snap.Row(i)
		id := strings.TrimSpace(row.At(idCol))
		if row.Empty() || id == "" {
			continue
		}

		key, title, sortValue, numeric := groupFor(id, maps, mode)
		g, ok := byKey[key]
		if !ok {
			g = &Group{Key: key, Title: title, HasSort: numeric, SortValue: sortValue}
			byKey[key] = g
			groups = append(groups, g)
		}

		entry := RowEntry{Values: row.Values(), Position: i}
		if hasIDP {
			entry.IDP, entry.HasIDP = parseNumber(row.At(idpCol))
		}
		if hasDS {
			entry.DSName = strings.ToLower(strings.TrimSpace(row.At(dsCol)))
		}
		g.Rows = append(g.Rows, entry)
	}

	OrderGroups(groups)
	for _, g := range groups {
		if mode == ByPrice {
			g.Rows = orderByPrice(g.Rows)
		} else {
			g.Rows = orderByManufacturer(g.Rows)
		}
	}

	return &Arrangement{Groups: groups, TitleCol: titleCol, Width: snap.Width()}, nil
}

// groupFor возвращает ключ группы, ее подпись и числовой порядок, если он есть
func groupFor(id string, maps GroupMaps, mode Mode) (string, string, float64, bool) {
	if mode == ByPrice {
		if info, ok := maps.IDToPrice[id]; ok {
			if n, ok := parseNumber(info.IDL); ok {
				idl := int(n)
				line := maps.IDLToLine[idl]

				var parts []string
				if line.GroupLine != "" {
					parts = append(parts, line.GroupLine)
				}
				if line.LinePrice != "" {
					parts = append(parts, line.LinePrice)
				}
				title := constants.TitleUndetermined
				if len(parts) > 0 {
					title = strings.Join(parts, "\n")
				}
				return fmt.Sprintf("LINE_%d", idl), title, float64(idl), true
			}
		}
		return constants.GroupUnassigned, constants.TitleUnassigned, 0, false
	}

	if info, ok := maps.IDToGroup[id]; ok {
		group := strings.TrimSpace(info.Group)
		if n, ok := parseNumber(info.IDG); ok {
			idg := int(n)
			title := group
			if title == "" {
				title = constants.TitleUndetermined
			}
			return fmt.Sprintf("GROUP_%d", idg), title, float64(idg), true
		}
		if group != "" {
			return "META_" + group, group, 0, false
		}
	}
	return constants.GroupUnassigned, constants.TitleUnassigned, 0, false
}

// OrderGroups: числовые группы по возрастанию, затем группы-подписи по ключу,
// UNASSIGNED всегда последней
func OrderGroups(groups []*Group) {
	rank := func(g *Group) int {
		switch {
		case g.Key == constants.GroupUnassigned:
			return 2
		case g.HasSort:
			return 0
		default:
			return 1
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra < rb
		}
		if a.HasSort && b.HasSort && a.SortValue != b.SortValue {
			return a.SortValue < b.SortValue
		}
		return a.Key < b.Key
	})
}

// orderByPrice: строки с ID-P по возрастанию, без ID-P в конце, при равенстве - исходный порядок
func orderByPrice(rows []RowEntry) []RowEntry {
	out := append([]RowEntry(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasIDP != b.HasIDP {
			return a.HasIDP
		}
		if a.HasIDP && a.IDP != b.IDP {
			return a.IDP < b.IDP
		}
		return a.Position < b.Position
	})
	return out
}

// orderByManufacturer: строки с ID-P по возрастанию; каждая строка без ID-P
// встает сразу за последней строкой с тем же наименованием ДС, иначе в конец
func orderByManufacturer(rows []RowEntry) []RowEntry {
	var with, without []RowEntry
	for _, r := range rows {
		if r.HasIDP {
			with = append(with, r)
		} else {
			without = append(without, r)
		}
	}

	sort.SliceStable(with, func(i, j int) bool { return with[i].IDP < with[j].IDP })
	sort.SliceStable(without, func(i, j int) bool { return without[i].Position < without[j].Position })

	arranged := make([]RowEntry, 0, len(rows))
	arranged = append(arranged, with...)

	for _, r := range without {
		at := -1
		if r.DSName != "" {
			for i := len(arranged) - 1; i >= 0; i-- {
				if arranged[i].DSName == r.DSName {
					at = i + 1
					break
				}
			}
		}
		if at < 0 {
			arranged = append(arranged, r)
			continue
		}
		arranged = append(arranged, RowEntry{})
		copy(arranged[at+1:], arranged[at:])
		arranged[at] = r
	}
	return arranged
}

// Layout разворачивает группы в строки листа начиная со второй:
// строка-заголовок группы, затем ее строки. headerRows - номера строк-заголовков (с 1).
func (a *Arrangement) Layout() (rows [][]string, headerRows []int) {
	for _, g := range a.Groups {
		title := make([]string, a.Width)
		if a.TitleCol < a.Width {
			title[a.TitleCol] = g.Title
		}
		rows = append(rows, title)
		headerRows = append(headerRows, len(rows)+1)

		for _, r := range g.Rows {
			values := make([]string, a.Width)
			copy(values, r.Values)
			rows = append(rows, values)
		}
	}
	return rows, headerRows
}
